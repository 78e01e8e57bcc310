package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/enaran74/defrag-tracker/internal/logger"
	"github.com/enaran74/defrag-tracker/internal/middleware"
	"github.com/enaran74/defrag-tracker/internal/models"
)

// MockLedgerService is a mock implementation of LedgerService for testing
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateBatch(ctx context.Context, propertyCode, createdBy string) (*models.MoveBatch, error) {
	args := m.Called(ctx, propertyCode, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MoveBatch), args.Error(1)
}

func (m *MockLedgerService) AssignMoves(ctx context.Context, batchID int64, raws []models.RawMove) ([]models.DefragMove, *models.MoveBatch, error) {
	args := m.Called(ctx, batchID, raws)
	var moves []models.DefragMove
	if args.Get(0) != nil {
		moves = args.Get(0).([]models.DefragMove)
	}
	var batch *models.MoveBatch
	if args.Get(1) != nil {
		batch = args.Get(1).(*models.MoveBatch)
	}
	return moves, batch, args.Error(2)
}

func (m *MockLedgerService) TransitionMove(ctx context.Context, moveID int64, action models.MoveAction, actor string) (*models.DefragMove, *models.MoveBatch, error) {
	args := m.Called(ctx, moveID, action, actor)
	var move *models.DefragMove
	if args.Get(0) != nil {
		move = args.Get(0).(*models.DefragMove)
	}
	var batch *models.MoveBatch
	if args.Get(1) != nil {
		batch = args.Get(1).(*models.MoveBatch)
	}
	return move, batch, args.Error(2)
}

func (m *MockLedgerService) GetBatch(ctx context.Context, id int64) (*models.MoveBatch, []models.DefragMove, error) {
	args := m.Called(ctx, id)
	var batch *models.MoveBatch
	if args.Get(0) != nil {
		batch = args.Get(0).(*models.MoveBatch)
	}
	var moves []models.DefragMove
	if args.Get(1) != nil {
		moves = args.Get(1).([]models.DefragMove)
	}
	return batch, moves, args.Error(2)
}

func (m *MockLedgerService) GetMove(ctx context.Context, id int64) (*models.DefragMove, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DefragMove), args.Error(1)
}

func (m *MockLedgerService) ListBatches(ctx context.Context, propertyCode string, status models.BatchStatus) ([]models.MoveBatch, error) {
	args := m.Called(ctx, propertyCode, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MoveBatch), args.Error(1)
}

func (m *MockLedgerService) ListMoves(ctx context.Context, status models.MoveStatus, limit int) ([]models.DefragMove, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DefragMove), args.Error(1)
}

// MockPropertyService is a mock implementation of PropertyService for testing
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) Ingest(ctx context.Context, code, name, externalRef string) (*models.Property, error) {
	args := m.Called(ctx, code, name, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, code string) (*models.Property, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Deactivate(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockPropertyService) ClassifyUnresolved(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// stubTagger returns canned holiday periods.
type stubTagger struct {
	periods []models.HolidayPeriod
	region  string
	window  time.Duration
}

func (t *stubTagger) CombinedForwardPeriods(_ context.Context, region string, _ time.Time, window time.Duration) []models.HolidayPeriod {
	t.region = region
	t.window = window
	return t.periods
}

// newTestRouter creates a router with the standard middleware for handler tests.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.New("test")))
	return router
}
