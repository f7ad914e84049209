package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classbook/classbook-api/internal/schedule"
	"github.com/classbook/classbook-api/internal/service"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
	"github.com/classbook/classbook-api/pkg/response"
)

// AvailabilityHandler exposes spot availability endpoints.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

type availabilityRequest struct {
	Days []string `json:"days" binding:"required,min=1,dive,required"`
}

// ForDays godoc
// @Summary Compute availability for a list of dates
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body availabilityRequest true "Dates (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /availability [post]
func (h *AvailabilityHandler) ForDays(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	days := make([]schedule.DayWithDate, 0, len(req.Days))
	for _, date := range req.Days {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "days must be YYYY-MM-DD"))
			return
		}
		days = append(days, schedule.DayWithDate{WeekDay: schedule.WeekDayOf(date), Date: date})
	}

	reports, err := h.service.ForDays(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Week godoc
// @Summary Availability for today plus the next six days
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /availability/week [get]
func (h *AvailabilityHandler) Week(c *gin.Context) {
	reports, err := h.service.WeekView(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}
