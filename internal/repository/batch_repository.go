package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/enaran74/defrag-tracker/internal/database"
	"github.com/enaran74/defrag-tracker/internal/models"
)

// BatchRepository defines data access for move batches.
type BatchRepository interface {
	// Create inserts a new batch with status pending and zero counters.
	Create(ctx context.Context, propertyCode, createdBy string) (*models.MoveBatch, error)

	// GetByID returns nil, nil when the batch does not exist.
	GetByID(ctx context.Context, id int64) (*models.MoveBatch, error)

	// SetTotalMoves records the number of moves assigned to the batch.
	SetTotalMoves(ctx context.Context, id int64, total int) error

	// ApplyTransition increments exactly one counter in-place and derives
	// the new batch status in the same statement, so concurrent increments
	// can never lose an update against a stale aggregate.
	ApplyTransition(ctx context.Context, id int64, action models.MoveAction) (*models.MoveBatch, error)

	// ListByProperty returns the batches for a property, newest first,
	// optionally filtered by status.
	ListByProperty(ctx context.Context, propertyCode string, status models.BatchStatus) ([]models.MoveBatch, error)
}

type batchRepository struct {
	q database.Querier
}

// NewBatchRepository creates a BatchRepository bound to a pool or
// transaction.
func NewBatchRepository(q database.Querier) BatchRepository {
	return &batchRepository{q: q}
}

const batchColumns = `id, property_code, created_by, status, total_moves,
	processed_moves, rejected_moves, created_at, updated_at`

func scanBatch(row pgx.Row) (*models.MoveBatch, error) {
	var b models.MoveBatch
	err := row.Scan(
		&b.ID,
		&b.PropertyCode,
		&b.CreatedBy,
		&b.Status,
		&b.TotalMoves,
		&b.ProcessedMoves,
		&b.RejectedMoves,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *batchRepository) Create(ctx context.Context, propertyCode, createdBy string) (*models.MoveBatch, error) {
	query := `
		INSERT INTO move_batches (property_code, created_by, status)
		VALUES ($1, $2, 'pending')
		RETURNING ` + batchColumns

	batch, err := scanBatch(r.q.QueryRow(ctx, query, propertyCode, createdBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create batch for property %q: %w", propertyCode, err)
	}
	return batch, nil
}

func (r *batchRepository) GetByID(ctx context.Context, id int64) (*models.MoveBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM move_batches WHERE id = $1`

	batch, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query batch %d: %w", id, err)
	}
	return batch, nil
}

func (r *batchRepository) SetTotalMoves(ctx context.Context, id int64, total int) error {
	query := `UPDATE move_batches SET total_moves = $2, updated_at = now() WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id, total)
	if err != nil {
		return fmt.Errorf("failed to set total moves on batch %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("batch %d not found", id)
	}
	return nil
}

func (r *batchRepository) ApplyTransition(ctx context.Context, id int64, action models.MoveAction) (*models.MoveBatch, error) {
	// The counter moves by an in-place increment and the status is derived
	// from the pre-update counters plus this increment, all inside one
	// statement. Never read-modify-write the aggregate from Go.
	processedInc, rejectedInc := 0, 0
	if action == models.ActionApprove {
		processedInc = 1
	} else {
		rejectedInc = 1
	}

	query := `
		UPDATE move_batches SET
			processed_moves = processed_moves + $2,
			rejected_moves = rejected_moves + $3,
			status = CASE
				WHEN processed_moves + rejected_moves + 1 >= total_moves THEN 'completed'
				ELSE 'processing'
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + batchColumns

	batch, err := scanBatch(r.q.QueryRow(ctx, query, id, processedInc, rejectedInc))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to apply %s transition to batch %d: %w", action, id, err)
	}
	return batch, nil
}

func (r *batchRepository) ListByProperty(ctx context.Context, propertyCode string, status models.BatchStatus) ([]models.MoveBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM move_batches WHERE property_code = $1`
	args := []any{propertyCode}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches for property %q: %w", propertyCode, err)
	}
	defer rows.Close()

	batches := []models.MoveBatch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		batches = append(batches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batch rows: %w", err)
	}

	return batches, nil
}
