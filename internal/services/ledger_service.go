package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enaran74/defrag-tracker/internal/holidays"
	"github.com/enaran74/defrag-tracker/internal/logger"
	"github.com/enaran74/defrag-tracker/internal/models"
	"github.com/enaran74/defrag-tracker/internal/repository"
)

// Service-level errors
var (
	ErrPropertyNotFound     = errors.New("property not found")
	ErrPropertyInactive     = errors.New("property is inactive")
	ErrBatchNotFound        = errors.New("batch not found")
	ErrMoveNotFound         = errors.New("move not found")
	ErrMoveFinalized        = errors.New("move already finalized")
	ErrBatchAlreadyAssigned = errors.New("batch already has moves assigned")
	ErrInvalidAction        = errors.New("action must be approve or reject")
	ErrNoMoves              = errors.New("at least one move is required")
	ErrInvalidDateRange     = errors.New("move date range is invalid")
)

// Store is the persistence boundary the ledger drives: pool-bound
// repositories for plain reads, transactional units for everything that has
// to be atomic.
type Store interface {
	Repos() repository.Repos
	RunInTx(ctx context.Context, fn func(repository.Repos) error) error
}

// HolidayTagger answers which holiday periods lie ahead for a region.
// *holidays.Engine is the production implementation.
type HolidayTagger interface {
	CombinedForwardPeriods(ctx context.Context, region string, from time.Time, window time.Duration) []models.HolidayPeriod
}

// LedgerService owns the batch and move lifecycle: batch creation, move
// assignment with holiday tagging, and atomic approve/reject transitions.
type LedgerService interface {
	// CreateBatch opens a pending batch for a property.
	// Returns ErrPropertyNotFound / ErrPropertyInactive.
	CreateBatch(ctx context.Context, propertyCode, createdBy string) (*models.MoveBatch, error)

	// AssignMoves attaches the raw candidate moves to a batch, tagging each
	// with the winning holiday period. The whole assignment is one atomic
	// unit; readers never see a partially-assigned batch.
	// Returns ErrBatchNotFound, ErrBatchAlreadyAssigned, ErrNoMoves,
	// ErrInvalidDateRange.
	AssignMoves(ctx context.Context, batchID int64, raws []models.RawMove) ([]models.DefragMove, *models.MoveBatch, error)

	// TransitionMove approves or rejects a single move and updates the
	// batch counters as one indivisible unit. Exactly one of N concurrent
	// attempts on the same move succeeds; the rest get ErrMoveFinalized.
	TransitionMove(ctx context.Context, moveID int64, action models.MoveAction, actor string) (*models.DefragMove, *models.MoveBatch, error)

	// GetBatch returns the batch aggregate and its moves.
	GetBatch(ctx context.Context, id int64) (*models.MoveBatch, []models.DefragMove, error)

	// GetMove returns a single move.
	GetMove(ctx context.Context, id int64) (*models.DefragMove, error)

	// ListBatches returns a property's batches, newest first, optionally
	// filtered by status. Returns ErrPropertyNotFound for unknown codes.
	ListBatches(ctx context.Context, propertyCode string, status models.BatchStatus) ([]models.MoveBatch, error)

	// ListMoves returns moves in a given status, oldest first.
	ListMoves(ctx context.Context, status models.MoveStatus, limit int) ([]models.DefragMove, error)
}

type ledgerService struct {
	store             Store
	tagger            HolidayTagger
	log               *logger.Logger
	window            time.Duration
	transitionTimeout time.Duration
}

// NewLedgerService creates a LedgerService. windowDays bounds how far ahead
// holiday periods are considered when tagging moves; transitionTimeout
// bounds how long a transition may wait on the store.
func NewLedgerService(store Store, tagger HolidayTagger, log *logger.Logger, windowDays int, transitionTimeout time.Duration) LedgerService {
	return &ledgerService{
		store:             store,
		tagger:            tagger,
		log:               log,
		window:            time.Duration(windowDays) * 24 * time.Hour,
		transitionTimeout: transitionTimeout,
	}
}

func (s *ledgerService) CreateBatch(ctx context.Context, propertyCode, createdBy string) (*models.MoveBatch, error) {
	repos := s.store.Repos()

	property, err := repos.Properties.GetByCode(ctx, propertyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	if !property.Active {
		return nil, ErrPropertyInactive
	}

	batch, err := repos.Batches.Create(ctx, propertyCode, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	s.log.Info("Batch created", map[string]interface{}{
		"batch_id":      batch.ID,
		"property_code": propertyCode,
		"created_by":    createdBy,
	})

	return batch, nil
}

func (s *ledgerService) AssignMoves(ctx context.Context, batchID int64, raws []models.RawMove) ([]models.DefragMove, *models.MoveBatch, error) {
	if len(raws) == 0 {
		return nil, nil, ErrNoMoves
	}

	repos := s.store.Repos()

	batch, err := repos.Batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, nil, ErrBatchNotFound
	}
	if batch.TotalMoves > 0 || batch.Status != models.BatchPending {
		return nil, nil, ErrBatchAlreadyAssigned
	}

	property, err := repos.Properties.GetByCode(ctx, batch.PropertyCode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, nil, ErrPropertyNotFound
	}

	// Holiday enrichment is best-effort and happens before the write unit:
	// an unresolved region or an unreachable calendar source just leaves
	// tags empty, it never blocks the assignment.
	var periods []models.HolidayPeriod
	if property.StateCode != nil {
		periods = s.tagger.CombinedForwardPeriods(ctx, *property.StateCode, time.Now().UTC(), s.window)
	}

	pending := make([]models.DefragMove, 0, len(raws))
	for _, raw := range raws {
		if raw.MoveTo.Before(raw.MoveFrom) {
			return nil, nil, fmt.Errorf("%w: %s to %s",
				ErrInvalidDateRange, raw.MoveFrom.Format("2006-01-02"), raw.MoveTo.Format("2006-01-02"))
		}

		move := models.DefragMove{
			PropertyCode: batch.PropertyCode,
			BatchID:      &batch.ID,
			AnalyzedAt:   raw.AnalyzedAt,
			Payload:      raw.Payload,
			MoveFrom:     raw.MoveFrom,
			MoveTo:       raw.MoveTo,
			Status:       models.MovePending,
		}
		if raw.SuggestedBy != "" {
			now := time.Now().UTC()
			move.SuggestedBy = &raw.SuggestedBy
			move.SuggestedAt = &now
		}
		if winner := holidays.SelectPeriod(periods, raw.MoveFrom, raw.MoveTo); winner != nil {
			move.IsHolidayMove = true
			move.HolidayPeriodName = winner.Name
			move.HolidayType = string(winner.Type)
			move.HolidayImportance = winner.Importance
		}
		pending = append(pending, move)
	}

	created := make([]models.DefragMove, 0, len(pending))
	err = s.store.RunInTx(ctx, func(txRepos repository.Repos) error {
		if err := txRepos.Batches.SetTotalMoves(ctx, batchID, len(pending)); err != nil {
			return err
		}
		for i := range pending {
			saved, err := txRepos.Moves.Insert(ctx, &pending[i])
			if err != nil {
				return err
			}
			created = append(created, *saved)
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to assign moves", err, map[string]interface{}{
			"batch_id": batchID,
			"moves":    len(pending),
		})
		return nil, nil, fmt.Errorf("failed to assign moves: %w", err)
	}

	batch.TotalMoves = len(created)

	s.log.Info("Moves assigned", map[string]interface{}{
		"batch_id":      batchID,
		"property_code": batch.PropertyCode,
		"moves":         len(created),
	})

	return created, batch, nil
}

func (s *ledgerService) TransitionMove(ctx context.Context, moveID int64, action models.MoveAction, actor string) (*models.DefragMove, *models.MoveBatch, error) {
	if !action.Valid() {
		return nil, nil, ErrInvalidAction
	}

	// The transition may block on the store's small pool; bound the wait
	// instead of queuing forever.
	ctx, cancel := context.WithTimeout(ctx, s.transitionTimeout)
	defer cancel()

	var (
		move  *models.DefragMove
		batch *models.MoveBatch
	)
	err := s.store.RunInTx(ctx, func(repos repository.Repos) error {
		// The row lock serializes concurrent attempts on this move; the
		// loser blocks here and then observes the finalized row.
		locked, err := repos.Moves.GetByIDForUpdate(ctx, moveID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrMoveNotFound
		}
		if locked.Finalized() {
			return ErrMoveFinalized
		}
		if locked.BatchID == nil {
			return ErrBatchNotFound
		}

		updated, err := repos.Moves.ApplyTransition(ctx, moveID, action, actor, time.Now().UTC())
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrMoveFinalized
		}

		aggregate, err := repos.Batches.ApplyTransition(ctx, *locked.BatchID, action)
		if err != nil {
			return err
		}
		if aggregate == nil {
			return ErrBatchNotFound
		}

		move, batch = updated, aggregate
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrMoveNotFound) || errors.Is(err, ErrMoveFinalized) || errors.Is(err, ErrBatchNotFound) {
			return nil, nil, err
		}
		s.log.Error("Move transition failed", err, map[string]interface{}{
			"move_id": moveID,
			"action":  action,
			"actor":   actor,
		})
		return nil, nil, fmt.Errorf("failed to transition move: %w", err)
	}

	s.log.Info("Move transitioned", map[string]interface{}{
		"move_id":      moveID,
		"action":       action,
		"actor":        actor,
		"batch_id":     batch.ID,
		"batch_status": batch.Status,
		"completion":   batch.CompletionPercentage(),
	})

	return move, batch, nil
}

func (s *ledgerService) GetBatch(ctx context.Context, id int64) (*models.MoveBatch, []models.DefragMove, error) {
	repos := s.store.Repos()

	batch, err := repos.Batches.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, nil, ErrBatchNotFound
	}

	moves, err := repos.Moves.ListByBatch(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load batch moves: %w", err)
	}

	return batch, moves, nil
}

func (s *ledgerService) GetMove(ctx context.Context, id int64) (*models.DefragMove, error) {
	move, err := s.store.Repos().Moves.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load move: %w", err)
	}
	if move == nil {
		return nil, ErrMoveNotFound
	}
	return move, nil
}

func (s *ledgerService) ListBatches(ctx context.Context, propertyCode string, status models.BatchStatus) ([]models.MoveBatch, error) {
	repos := s.store.Repos()

	property, err := repos.Properties.GetByCode(ctx, propertyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	batches, err := repos.Batches.ListByProperty(ctx, propertyCode, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}

func (s *ledgerService) ListMoves(ctx context.Context, status models.MoveStatus, limit int) ([]models.DefragMove, error) {
	moves, err := s.store.Repos().Moves.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	return moves, nil
}
