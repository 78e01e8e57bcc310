package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/enaran74/defrag-tracker/internal/database"
	"github.com/enaran74/defrag-tracker/internal/models"
)

// MoveRepository defines data access for defrag moves.
type MoveRepository interface {
	// Insert persists a move attached to its batch.
	Insert(ctx context.Context, m *models.DefragMove) (*models.DefragMove, error)

	// GetByID returns nil, nil when the move does not exist.
	GetByID(ctx context.Context, id int64) (*models.DefragMove, error)

	// GetByIDForUpdate reads the move under a row lock. Inside a
	// transaction this serializes concurrent transition attempts on the
	// same move: the loser blocks, then observes the finalized row.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.DefragMove, error)

	// ApplyTransition finalizes a pending move. The WHERE clause refuses
	// already-finalized rows as a second line of defense behind the row
	// lock; nil, nil means the move was not in a transitionable state.
	ApplyTransition(ctx context.Context, id int64, action models.MoveAction, actor string, at time.Time) (*models.DefragMove, error)

	// ListByBatch returns a batch's moves in insertion order.
	ListByBatch(ctx context.Context, batchID int64) ([]models.DefragMove, error)

	// ListByStatus returns moves in a given status, oldest first.
	ListByStatus(ctx context.Context, status models.MoveStatus, limit int) ([]models.DefragMove, error)
}

type moveRepository struct {
	q database.Querier
}

// NewMoveRepository creates a MoveRepository bound to a pool or transaction.
func NewMoveRepository(q database.Querier) MoveRepository {
	return &moveRepository{q: q}
}

const moveColumns = `id, property_code, batch_id, analyzed_at, payload,
	move_from, move_to, status, is_processed, is_rejected,
	suggested_by, suggested_at, approved_by, approved_at,
	rejected_by, rejected_at, processed_by, processed_at,
	is_holiday_move, holiday_period_name, holiday_type, holiday_importance,
	created_at`

func scanMove(row pgx.Row) (*models.DefragMove, error) {
	var m models.DefragMove
	err := row.Scan(
		&m.ID,
		&m.PropertyCode,
		&m.BatchID,
		&m.AnalyzedAt,
		&m.Payload,
		&m.MoveFrom,
		&m.MoveTo,
		&m.Status,
		&m.IsProcessed,
		&m.IsRejected,
		&m.SuggestedBy,
		&m.SuggestedAt,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.RejectedBy,
		&m.RejectedAt,
		&m.ProcessedBy,
		&m.ProcessedAt,
		&m.IsHolidayMove,
		&m.HolidayPeriodName,
		&m.HolidayType,
		&m.HolidayImportance,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *moveRepository) Insert(ctx context.Context, m *models.DefragMove) (*models.DefragMove, error) {
	query := `
		INSERT INTO defrag_moves (
			property_code, batch_id, analyzed_at, payload, move_from, move_to,
			status, suggested_by, suggested_at,
			is_holiday_move, holiday_period_name, holiday_type, holiday_importance
		)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8, $9, $10, $11, $12)
		RETURNING ` + moveColumns

	saved, err := scanMove(r.q.QueryRow(ctx, query,
		m.PropertyCode, m.BatchID, m.AnalyzedAt, m.Payload, m.MoveFrom, m.MoveTo,
		m.SuggestedBy, m.SuggestedAt,
		m.IsHolidayMove, m.HolidayPeriodName, m.HolidayType, m.HolidayImportance,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert move for property %q: %w", m.PropertyCode, err)
	}
	return saved, nil
}

func (r *moveRepository) GetByID(ctx context.Context, id int64) (*models.DefragMove, error) {
	query := `SELECT ` + moveColumns + ` FROM defrag_moves WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *moveRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.DefragMove, error) {
	query := `SELECT ` + moveColumns + ` FROM defrag_moves WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *moveRepository) getOne(ctx context.Context, query string, id int64) (*models.DefragMove, error) {
	m, err := scanMove(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query move %d: %w", id, err)
	}
	return m, nil
}

func (r *moveRepository) ApplyTransition(ctx context.Context, id int64, action models.MoveAction, actor string, at time.Time) (*models.DefragMove, error) {
	var query string
	if action == models.ActionApprove {
		query = `
			UPDATE defrag_moves SET
				status = 'approved',
				is_processed = true,
				approved_by = $2, approved_at = $3,
				processed_by = $2, processed_at = $3
			WHERE id = $1 AND NOT is_processed AND NOT is_rejected
			RETURNING ` + moveColumns
	} else {
		query = `
			UPDATE defrag_moves SET
				status = 'rejected',
				is_rejected = true,
				rejected_by = $2, rejected_at = $3
			WHERE id = $1 AND NOT is_processed AND NOT is_rejected
			RETURNING ` + moveColumns
	}

	m, err := scanMove(r.q.QueryRow(ctx, query, id, actor, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to apply %s transition to move %d: %w", action, id, err)
	}
	return m, nil
}

func (r *moveRepository) ListByBatch(ctx context.Context, batchID int64) ([]models.DefragMove, error) {
	query := `SELECT ` + moveColumns + ` FROM defrag_moves WHERE batch_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves for batch %d: %w", batchID, err)
	}
	defer rows.Close()

	return collectMoves(rows)
}

func (r *moveRepository) ListByStatus(ctx context.Context, status models.MoveStatus, limit int) ([]models.DefragMove, error) {
	query := `SELECT ` + moveColumns + ` FROM defrag_moves
		WHERE status = $1 ORDER BY created_at LIMIT $2`

	rows, err := r.q.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves with status %q: %w", status, err)
	}
	defer rows.Close()

	return collectMoves(rows)
}

func collectMoves(rows pgx.Rows) ([]models.DefragMove, error) {
	moves := []models.DefragMove{}
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move row: %w", err)
		}
		moves = append(moves, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating move rows: %w", err)
	}
	return moves, nil
}
