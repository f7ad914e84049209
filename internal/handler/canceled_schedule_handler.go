package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classbook/classbook-api/internal/service"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
	"github.com/classbook/classbook-api/pkg/response"
)

// CanceledScheduleHandler manages cancellation endpoints.
type CanceledScheduleHandler struct {
	service *service.CanceledScheduleService
}

// NewCanceledScheduleHandler constructs handler.
func NewCanceledScheduleHandler(svc *service.CanceledScheduleService) *CanceledScheduleHandler {
	return &CanceledScheduleHandler{service: svc}
}

// ListByDay godoc
// @Summary List cancellations for a date
// @Tags CanceledSchedules
// @Produce json
// @Param day query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /canceled-schedules [get]
func (h *CanceledScheduleHandler) ListByDay(c *gin.Context) {
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
// @Summary Get a cancellation record
// @Tags CanceledSchedules
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /canceled-schedules/{id} [get]
func (h *CanceledScheduleHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Cancel godoc
// @Summary Cancel one dated occurrence of a member's fixed class
// @Tags CanceledSchedules
// @Accept json
// @Produce json
// @Param payload body service.CancelRequest true "Cancellation payload"
// @Success 200 {object} response.Envelope
// @Router /canceled-schedules/cancel [post]
func (h *CanceledScheduleHandler) Cancel(c *gin.Context) {
	var req service.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Cancel(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Revert godoc
// @Summary Undo a member's cancellation for a date
// @Tags CanceledSchedules
// @Accept json
// @Produce json
// @Param payload body service.CancelRequest true "Cancellation payload"
// @Success 200 {object} response.Envelope
// @Router /canceled-schedules/revert [post]
func (h *CanceledScheduleHandler) Revert(c *gin.Context) {
	var req service.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Revert(c.Request.Context(), req.Day, req.HourOfTheDay, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete a cancellation record
// @Tags CanceledSchedules
// @Param id path string true "Record ID"
// @Success 204 "No Content"
// @Router /canceled-schedules/{id} [delete]
func (h *CanceledScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
