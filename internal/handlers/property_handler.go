package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/enaran74/defrag-tracker/internal/errors"
	"github.com/enaran74/defrag-tracker/internal/models"
	"github.com/enaran74/defrag-tracker/internal/services"
)

// PropertyHandler handles property ingestion and lookup requests.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// IngestPropertyRequest is the body for POST /api/v1/properties.
type IngestPropertyRequest struct {
	Code        string `json:"code" binding:"required,min=2,max=20"`
	Name        string `json:"name" binding:"required,max=200"`
	ExternalRef string `json:"external_ref" binding:"max=100"`
}

// PropertyResponse wraps a property in API responses.
type PropertyResponse struct {
	Property *models.Property `json:"property"`
}

// Ingest handles POST /api/v1/properties.
func (h *PropertyHandler) Ingest(c *gin.Context) {
	var req IngestPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	property, err := h.service.Ingest(c.Request.Context(), req.Code, req.Name, req.ExternalRef)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to ingest property", err)
		return
	}

	c.JSON(http.StatusCreated, PropertyResponse{Property: property})
}

// Get handles GET /api/v1/properties/:code.
func (h *PropertyHandler) Get(c *gin.Context) {
	code := c.Param("code")

	property, err := h.service.Get(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "Property not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load property", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

// Deactivate handles POST /api/v1/properties/:code/deactivate.
func (h *PropertyHandler) Deactivate(c *gin.Context) {
	code := c.Param("code")

	if err := h.service.Deactivate(c.Request.Context(), code); err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "Property not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to deactivate property", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// ClassifySweep handles POST /api/v1/properties/classify.
// It re-runs the region classifier over all unresolved properties.
func (h *PropertyHandler) ClassifySweep(c *gin.Context) {
	resolved, err := h.service.ClassifyUnresolved(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Classification sweep failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resolved": resolved})
}
