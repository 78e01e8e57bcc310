package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/enaran74/defrag-tracker/internal/errors"
	"github.com/enaran74/defrag-tracker/internal/models"
	"github.com/enaran74/defrag-tracker/internal/services"
)

func setupBatchRouter(svc services.LedgerService) *gin.Engine {
	router := newTestRouter()
	handler := NewBatchHandler(svc)

	v1 := router.Group("/api/v1")
	{
		batches := v1.Group("/batches")
		{
			batches.POST("", handler.Create)
			batches.GET("/:id", handler.Get)
		}
		v1.GET("/properties/:code/batches", handler.ListByProperty)
	}

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateBatch_Created(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupBatchRouter(svc)

	pending := &models.MoveBatch{ID: 7, PropertyCode: "SUNNY01", CreatedBy: "alice", Status: models.BatchPending}
	assigned := &models.MoveBatch{ID: 7, PropertyCode: "SUNNY01", CreatedBy: "alice", Status: models.BatchPending, TotalMoves: 2}

	svc.On("CreateBatch", mock.Anything, "SUNNY01", "alice").Return(pending, nil)
	svc.On("AssignMoves", mock.Anything, int64(7), mock.MatchedBy(func(raws []models.RawMove) bool {
		return len(raws) == 2 && raws[0].MoveFrom.Format("2006-01-02") == "2026-04-04"
	})).Return([]models.DefragMove{{ID: 10}, {ID: 11}}, assigned, nil)

	w := postJSON(t, router, "/api/v1/batches", gin.H{
		"property_code": "SUNNY01",
		"created_by":    "alice",
		"moves": []gin.H{
			{"move_from": "2026-04-04", "move_to": "2026-04-08"},
			{"move_from": "2026-07-10", "move_to": "2026-07-12"},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Batch.ID)
	assert.Equal(t, 2, resp.Batch.TotalMoves)
	assert.Equal(t, 0.0, resp.Batch.CompletionPercentage)
	assert.Len(t, resp.Moves, 2)
	svc.AssertExpectations(t)
}

func TestCreateBatch_ValidationErrors(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupBatchRouter(svc)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing property code", body: gin.H{
			"created_by": "alice",
			"moves":      []gin.H{{"move_from": "2026-04-04", "move_to": "2026-04-08"}},
		}},
		{name: "empty moves", body: gin.H{
			"property_code": "SUNNY01",
			"created_by":    "alice",
			"moves":         []gin.H{},
		}},
		{name: "bad date format", body: gin.H{
			"property_code": "SUNNY01",
			"created_by":    "alice",
			"moves":         []gin.H{{"move_from": "04/04/2026", "move_to": "2026-04-08"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/v1/batches", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	svc.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBatch_InvertedRangeRejectedBeforeAnyWrite(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupBatchRouter(svc)

	w := postJSON(t, router, "/api/v1/batches", gin.H{
		"property_code": "SUNNY01",
		"created_by":    "alice",
		"moves": []gin.H{
			{"move_from": "2026-04-04", "move_to": "2026-04-08"},
			{"move_from": "2026-04-10", "move_to": "2026-04-05"},
		},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apierrors.ErrBadRequest, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "2026-04-10 to 2026-04-05")

	// A rejected request must not open a batch: no orphaned pending batch
	// may become visible to later list reads.
	svc.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "AssignMoves", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBatch_PropertyNotFound(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupBatchRouter(svc)

	svc.On("CreateBatch", mock.Anything, "GHOST", "alice").Return(nil, services.ErrPropertyNotFound)

	w := postJSON(t, router, "/api/v1/batches", gin.H{
		"property_code": "GHOST",
		"created_by":    "alice",
		"moves":         []gin.H{{"move_from": "2026-04-04", "move_to": "2026-04-08"}},
	})

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apierrors.ErrNotFound, resp.Error.Code)
}

func TestGetBatch_Success(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupBatchRouter(svc)

	svc.On("GetBatch", mock.Anything, int64(7)).Return(&models.MoveBatch{
		ID: 7, Status: models.BatchProcessing, TotalMoves: 3, ProcessedMoves: 1, RejectedMoves: 1,
	}, []models.DefragMove{{ID: 1}, {ID: 2}, {ID: 3}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 66.7, resp.Batch.CompletionPercentage)
	assert.False(t, resp.Batch.IsComplete)
	assert.Len(t, resp.Moves, 3)
}

func TestGetBatch_NotFound(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupBatchRouter(svc)

	svc.On("GetBatch", mock.Anything, int64(42)).Return(nil, nil, services.ErrBatchNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBatchesByProperty(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupBatchRouter(svc)

	svc.On("ListBatches", mock.Anything, "SUNNY01", models.BatchCompleted).
		Return([]models.MoveBatch{
			{ID: 2, Status: models.BatchCompleted, TotalMoves: 3, ProcessedMoves: 3},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/SUNNY01/batches?status=completed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Batches []BatchData `json:"batches"`
		Count   int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Batches, 1)
	assert.Equal(t, 100.0, resp.Batches[0].CompletionPercentage)
}

func TestListBatchesByProperty_RejectsUnknownStatus(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupBatchRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/SUNNY01/batches?status=archived", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListBatches", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetBatch_BadID(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupBatchRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/seven", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetBatch", mock.Anything, mock.Anything)
}
