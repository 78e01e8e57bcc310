package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/enaran74/defrag-tracker/internal/models"
	"github.com/enaran74/defrag-tracker/internal/repository"
)

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Upsert(ctx context.Context, p *models.Property) (*models.Property, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) GetByCode(ctx context.Context, code string) (*models.Property, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) SetStateCode(ctx context.Context, code, stateCode string) error {
	args := m.Called(ctx, code, stateCode)
	return args.Error(0)
}

func (m *MockPropertyRepository) Deactivate(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockPropertyRepository) ListUnclassified(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

// MockBatchRepository is a mock implementation of BatchRepository for testing
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, propertyCode, createdBy string) (*models.MoveBatch, error) {
	args := m.Called(ctx, propertyCode, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MoveBatch), args.Error(1)
}

func (m *MockBatchRepository) GetByID(ctx context.Context, id int64) (*models.MoveBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MoveBatch), args.Error(1)
}

func (m *MockBatchRepository) SetTotalMoves(ctx context.Context, id int64, total int) error {
	args := m.Called(ctx, id, total)
	return args.Error(0)
}

func (m *MockBatchRepository) ApplyTransition(ctx context.Context, id int64, action models.MoveAction) (*models.MoveBatch, error) {
	args := m.Called(ctx, id, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MoveBatch), args.Error(1)
}

func (m *MockBatchRepository) ListByProperty(ctx context.Context, propertyCode string, status models.BatchStatus) ([]models.MoveBatch, error) {
	args := m.Called(ctx, propertyCode, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MoveBatch), args.Error(1)
}

// MockMoveRepository is a mock implementation of MoveRepository for testing
type MockMoveRepository struct {
	mock.Mock
}

func (m *MockMoveRepository) Insert(ctx context.Context, mv *models.DefragMove) (*models.DefragMove, error) {
	args := m.Called(ctx, mv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DefragMove), args.Error(1)
}

func (m *MockMoveRepository) GetByID(ctx context.Context, id int64) (*models.DefragMove, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DefragMove), args.Error(1)
}

func (m *MockMoveRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.DefragMove, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DefragMove), args.Error(1)
}

func (m *MockMoveRepository) ApplyTransition(ctx context.Context, id int64, action models.MoveAction, actor string, at time.Time) (*models.DefragMove, error) {
	args := m.Called(ctx, id, action, actor, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DefragMove), args.Error(1)
}

func (m *MockMoveRepository) ListByBatch(ctx context.Context, batchID int64) ([]models.DefragMove, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DefragMove), args.Error(1)
}

func (m *MockMoveRepository) ListByStatus(ctx context.Context, status models.MoveStatus, limit int) ([]models.DefragMove, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DefragMove), args.Error(1)
}

// fakeStore satisfies Store with the mock repositories bound to both the
// plain and the transactional path, so the tests observe every repository
// call regardless of which path the service takes.
type fakeStore struct {
	repos repository.Repos
}

func newFakeStore(props *MockPropertyRepository, batches *MockBatchRepository, moves *MockMoveRepository) *fakeStore {
	return &fakeStore{repos: repository.Repos{
		Properties: props,
		Batches:    batches,
		Moves:      moves,
	}}
}

func (s *fakeStore) Repos() repository.Repos {
	return s.repos
}

func (s *fakeStore) RunInTx(ctx context.Context, fn func(repository.Repos) error) error {
	return fn(s.repos)
}

// stubTagger returns canned holiday periods and counts how often it is asked.
type stubTagger struct {
	periods []models.HolidayPeriod
	calls   int
	region  string
}

func (t *stubTagger) CombinedForwardPeriods(_ context.Context, region string, _ time.Time, _ time.Duration) []models.HolidayPeriod {
	t.calls++
	t.region = region
	return t.periods
}
