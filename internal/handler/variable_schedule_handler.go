package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classbook/classbook-api/internal/service"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
	"github.com/classbook/classbook-api/pkg/response"
)

// VariableScheduleHandler manages one-off booking endpoints.
type VariableScheduleHandler struct {
	service *service.VariableScheduleService
}

// NewVariableScheduleHandler constructs handler.
func NewVariableScheduleHandler(svc *service.VariableScheduleService) *VariableScheduleHandler {
	return &VariableScheduleHandler{service: svc}
}

// ListByDay godoc
// @Summary List bookings for a date
// @Tags VariableSchedules
// @Produce json
// @Param day query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /variable-schedules [get]
func (h *VariableScheduleHandler) ListByDay(c *gin.Context) {
	day := c.Query("day")
	if day == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day query parameter is required"))
		return
	}
	records, err := h.service.ListByDay(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Get godoc
// @Summary Get a booking record
// @Tags VariableSchedules
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /variable-schedules/{id} [get]
func (h *VariableScheduleHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Book godoc
// @Summary Book a one-off class, redeeming a banked recovery
// @Tags VariableSchedules
// @Accept json
// @Produce json
// @Param payload body service.BookRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Router /variable-schedules/book [post]
func (h *VariableScheduleHandler) Book(c *gin.Context) {
	var req service.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Unbook godoc
// @Summary Remove a member's one-off booking, restoring the banked recovery
// @Tags VariableSchedules
// @Accept json
// @Produce json
// @Param payload body service.BookRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Router /variable-schedules/unbook [post]
func (h *VariableScheduleHandler) Unbook(c *gin.Context) {
	var req service.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Unbook(c.Request.Context(), req.Day, req.HourOfTheDay, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete a booking record
// @Tags VariableSchedules
// @Param id path string true "Record ID"
// @Success 204 "No Content"
// @Router /variable-schedules/{id} [delete]
func (h *VariableScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
