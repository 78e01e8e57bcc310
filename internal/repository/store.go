package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/enaran74/defrag-tracker/internal/database"
)

// Repos groups the repositories bound to one Querier, so an atomic unit of
// work sees a consistent set of repositories on the same transaction.
type Repos struct {
	Properties PropertyRepository
	Batches    BatchRepository
	Moves      MoveRepository
}

// NewRepos binds all repositories to the given Querier (pool or tx).
func NewRepos(q database.Querier) Repos {
	return Repos{
		Properties: NewPropertyRepository(q),
		Batches:    NewBatchRepository(q),
		Moves:      NewMoveRepository(q),
	}
}

// Store hands out pool-bound repositories for plain reads and runs
// transactional units of work over tx-bound ones.
type Store struct {
	db *database.Database
}

// NewStore creates a Store over the shared connection pool.
func NewStore(db *database.Database) *Store {
	return &Store{db: db}
}

// Repos returns repositories bound directly to the pool.
func (s *Store) Repos() Repos {
	return NewRepos(s.db.Pool)
}

// RunInTx executes fn with repositories bound to a single transaction.
// Any error rolls the whole unit back; nothing partial is ever visible.
func (s *Store) RunInTx(ctx context.Context, fn func(Repos) error) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
}
