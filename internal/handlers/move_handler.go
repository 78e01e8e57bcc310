package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/enaran74/defrag-tracker/internal/errors"
	"github.com/enaran74/defrag-tracker/internal/models"
	"github.com/enaran74/defrag-tracker/internal/services"
)

// MoveHandler handles move transition and lookup requests.
type MoveHandler struct {
	service services.LedgerService
}

// NewMoveHandler creates a new MoveHandler instance.
func NewMoveHandler(service services.LedgerService) *MoveHandler {
	return &MoveHandler{service: service}
}

// TransitionRequest is the body for POST /api/v1/moves/:id/transition.
type TransitionRequest struct {
	Action models.MoveAction `json:"action" binding:"required,oneof=approve reject"`
	Actor  string            `json:"actor" binding:"required"`
}

// TransitionResponse returns the updated move and its batch aggregate.
type TransitionResponse struct {
	Move  *models.DefragMove `json:"move"`
	Batch BatchData          `json:"batch"`
}

// MoveResponse wraps a single move.
type MoveResponse struct {
	Move *models.DefragMove `json:"move"`
}

// Transition handles POST /api/v1/moves/:id/transition.
// A move can be finalized exactly once; repeat attempts get 409.
func (h *MoveHandler) Transition(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Move id must be an integer", nil)
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	move, batch, err := h.service.TransitionMove(c.Request.Context(), id, req.Action, req.Actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMoveNotFound):
			apierrors.NotFound(c, "Move not found")
		case errors.Is(err, services.ErrBatchNotFound):
			apierrors.NotFound(c, "Batch not found")
		case errors.Is(err, services.ErrMoveFinalized):
			apierrors.StateConflict(c, "Move already finalized")
		case errors.Is(err, services.ErrInvalidAction):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to transition move", err)
		}
		return
	}

	c.JSON(http.StatusOK, TransitionResponse{
		Move:  move,
		Batch: mapBatchToDTO(batch),
	})
}

// ListMovesRequest is the query for GET /api/v1/moves.
type ListMovesRequest struct {
	Status string `form:"status" binding:"required,oneof=pending approved rejected applied"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// List handles GET /api/v1/moves. Moves come back oldest first, which is
// the order an approver wants to work through a queue in.
func (h *MoveHandler) List(c *gin.Context) {
	var req ListMovesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	moves, err := h.service.ListMoves(c.Request.Context(), models.MoveStatus(req.Status), limit)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list moves", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"moves": moves, "count": len(moves)})
}

// Get handles GET /api/v1/moves/:id.
func (h *MoveHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Move id must be an integer", nil)
		return
	}

	move, err := h.service.GetMove(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMoveNotFound) {
			apierrors.NotFound(c, "Move not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load move", err)
		return
	}

	c.JSON(http.StatusOK, MoveResponse{Move: move})
}
