package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/enaran74/defrag-tracker/internal/errors"
	"github.com/enaran74/defrag-tracker/internal/models"
	"github.com/enaran74/defrag-tracker/internal/services"
)

// HolidayHandler exposes the holiday period engine read-only, mostly for
// operational checks of the merged forward calendar per region.
type HolidayHandler struct {
	tagger            services.HolidayTagger
	defaultWindowDays int
}

// NewHolidayHandler creates a new HolidayHandler instance.
func NewHolidayHandler(tagger services.HolidayTagger, defaultWindowDays int) *HolidayHandler {
	return &HolidayHandler{tagger: tagger, defaultWindowDays: defaultWindowDays}
}

// ForwardPeriodsRequest is the query for GET /api/v1/holidays.
type ForwardPeriodsRequest struct {
	Region     string `form:"region" binding:"required,oneof=NSW VIC QLD SA WA TAS NT ACT"`
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	WindowDays int    `form:"window_days" binding:"omitempty,min=1,max=730"`
}

// ForwardPeriodsResponse lists the merged forward periods for a region.
type ForwardPeriodsResponse struct {
	Region  string                 `json:"region"`
	From    string                 `json:"from"`
	Periods []models.HolidayPeriod `json:"periods"`
	Count   int                    `json:"count"`
}

// ForwardPeriods handles GET /api/v1/holidays.
func (h *HolidayHandler) ForwardPeriods(c *gin.Context) {
	var req ForwardPeriodsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	from := time.Now().UTC().Truncate(24 * time.Hour)
	if req.From != "" {
		parsed, err := time.Parse(dateLayout, req.From)
		if err != nil {
			apierrors.BadRequest(c, "from must be a date in format "+dateLayout, nil)
			return
		}
		from = parsed
	}

	windowDays := req.WindowDays
	if windowDays == 0 {
		windowDays = h.defaultWindowDays
	}

	periods := h.tagger.CombinedForwardPeriods(c.Request.Context(), req.Region,
		from, time.Duration(windowDays)*24*time.Hour)

	c.JSON(http.StatusOK, ForwardPeriodsResponse{
		Region:  req.Region,
		From:    from.Format(dateLayout),
		Periods: periods,
		Count:   len(periods),
	})
}
