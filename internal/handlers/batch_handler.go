package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/enaran74/defrag-tracker/internal/errors"
	"github.com/enaran74/defrag-tracker/internal/models"
	"github.com/enaran74/defrag-tracker/internal/services"
)

const dateLayout = "2006-01-02"

// BatchHandler handles batch creation and lookup requests.
type BatchHandler struct {
	service services.LedgerService
}

// NewBatchHandler creates a new BatchHandler instance.
func NewBatchHandler(service services.LedgerService) *BatchHandler {
	return &BatchHandler{service: service}
}

// RawMoveRequest is one candidate move in a batch creation request. Dates
// are calendar days; the payload is stored untouched.
type RawMoveRequest struct {
	AnalyzedAt  time.Time       `json:"analyzed_at"`
	MoveFrom    string          `json:"move_from" binding:"required,datetime=2006-01-02"`
	MoveTo      string          `json:"move_to" binding:"required,datetime=2006-01-02"`
	SuggestedBy string          `json:"suggested_by"`
	Payload     json.RawMessage `json:"payload"`
}

// CreateBatchRequest is the body for POST /api/v1/batches.
type CreateBatchRequest struct {
	PropertyCode string           `json:"property_code" binding:"required"`
	CreatedBy    string           `json:"created_by" binding:"required"`
	Moves        []RawMoveRequest `json:"moves" binding:"required,min=1,dive"`
}

// BatchData is the batch aggregate in API responses.
type BatchData struct {
	ID                   int64              `json:"id"`
	PropertyCode         string             `json:"property_code"`
	CreatedBy            string             `json:"created_by"`
	Status               models.BatchStatus `json:"status"`
	TotalMoves           int                `json:"total_moves"`
	ProcessedMoves       int                `json:"processed_moves"`
	RejectedMoves        int                `json:"rejected_moves"`
	CompletionPercentage float64            `json:"completion_percentage"`
	IsComplete           bool               `json:"is_complete"`
	CreatedAt            time.Time          `json:"created_at"`
}

// BatchResponse is the response for batch endpoints.
type BatchResponse struct {
	Batch BatchData           `json:"batch"`
	Moves []models.DefragMove `json:"moves"`
}

// Create handles POST /api/v1/batches. It opens a batch for the property
// and assigns the supplied candidate moves, holiday-tagged, in one flow.
func (h *BatchHandler) Create(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	// Every move must parse and carry a sane range before any state is
	// written; a bad request must not leave an empty batch behind.
	raws := make([]models.RawMove, 0, len(req.Moves))
	for _, m := range req.Moves {
		moveFrom, err := time.Parse(dateLayout, m.MoveFrom)
		if err != nil {
			apierrors.BadRequest(c, "move_from must be a date in format "+dateLayout, nil)
			return
		}
		moveTo, err := time.Parse(dateLayout, m.MoveTo)
		if err != nil {
			apierrors.BadRequest(c, "move_to must be a date in format "+dateLayout, nil)
			return
		}
		if moveTo.Before(moveFrom) {
			apierrors.BadRequest(c, fmt.Sprintf("move date range is invalid: %s to %s", m.MoveFrom, m.MoveTo), nil)
			return
		}

		analyzedAt := m.AnalyzedAt
		if analyzedAt.IsZero() {
			analyzedAt = time.Now().UTC()
		}

		raws = append(raws, models.RawMove{
			AnalyzedAt:  analyzedAt,
			MoveFrom:    moveFrom,
			MoveTo:      moveTo,
			SuggestedBy: m.SuggestedBy,
			Payload:     m.Payload,
		})
	}

	ctx := c.Request.Context()

	batch, err := h.service.CreateBatch(ctx, req.PropertyCode, req.CreatedBy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPropertyNotFound):
			apierrors.NotFound(c, "Property not found")
		case errors.Is(err, services.ErrPropertyInactive):
			apierrors.BadRequest(c, "Property is inactive", nil)
		default:
			apierrors.InternalServerError(c, "Failed to create batch", err)
		}
		return
	}

	moves, batch, err := h.service.AssignMoves(ctx, batch.ID, raws)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDateRange):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, services.ErrNoMoves):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to assign moves", err)
		}
		return
	}

	c.JSON(http.StatusCreated, BatchResponse{
		Batch: mapBatchToDTO(batch),
		Moves: moves,
	})
}

// ListBatchesRequest is the query for GET /api/v1/properties/:code/batches.
type ListBatchesRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending processing completed failed"`
}

// ListByProperty handles GET /api/v1/properties/:code/batches.
func (h *BatchHandler) ListByProperty(c *gin.Context) {
	var req ListBatchesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	batches, err := h.service.ListBatches(c.Request.Context(), c.Param("code"), models.BatchStatus(req.Status))
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "Property not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to list batches", err)
		return
	}

	data := make([]BatchData, 0, len(batches))
	for i := range batches {
		data = append(data, mapBatchToDTO(&batches[i]))
	}

	c.JSON(http.StatusOK, gin.H{"batches": data, "count": len(data)})
}

// Get handles GET /api/v1/batches/:id.
func (h *BatchHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Batch id must be an integer", nil)
		return
	}

	batch, moves, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			apierrors.NotFound(c, "Batch not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load batch", err)
		return
	}

	c.JSON(http.StatusOK, BatchResponse{
		Batch: mapBatchToDTO(batch),
		Moves: moves,
	})
}

// mapBatchToDTO flattens the batch aggregate with its derived fields.
func mapBatchToDTO(b *models.MoveBatch) BatchData {
	return BatchData{
		ID:                   b.ID,
		PropertyCode:         b.PropertyCode,
		CreatedBy:            b.CreatedBy,
		Status:               b.Status,
		TotalMoves:           b.TotalMoves,
		ProcessedMoves:       b.ProcessedMoves,
		RejectedMoves:        b.RejectedMoves,
		CompletionPercentage: b.CompletionPercentage(),
		IsComplete:           b.IsComplete(),
		CreatedAt:            b.CreatedAt,
	}
}
