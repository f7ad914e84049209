package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/classbook/classbook-api/internal/schedule"
	"github.com/classbook/classbook-api/internal/service"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
	"github.com/classbook/classbook-api/pkg/response"
)

// FixedScheduleHandler manages weekly pattern endpoints.
type FixedScheduleHandler struct {
	service *service.FixedScheduleService
}

// NewFixedScheduleHandler constructs handler.
func NewFixedScheduleHandler(svc *service.FixedScheduleService) *FixedScheduleHandler {
	return &FixedScheduleHandler{service: svc}
}

type enrollmentRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ListByWeekDay godoc
// @Summary List weekly patterns for a weekday
// @Tags FixedSchedules
// @Produce json
// @Param weekDay query string true "Weekday name (e.g. MONDAY)"
// @Success 200 {object} response.Envelope
// @Router /fixed-schedules [get]
func (h *FixedScheduleHandler) ListByWeekDay(c *gin.Context) {
	weekDay := strings.ToUpper(c.Query("weekDay"))
	if weekDay == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekDay query parameter is required"))
		return
	}
	slots, err := h.service.ListByWeekDay(c.Request.Context(), schedule.WeekDay(weekDay))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Get godoc
// @Summary Get a weekly pattern
// @Tags FixedSchedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /fixed-schedules/{id} [get]
func (h *FixedScheduleHandler) Get(c *gin.Context) {
	slot, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Create a weekly pattern
// @Tags FixedSchedules
// @Accept json
// @Produce json
// @Param payload body service.CreateFixedScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /fixed-schedules [post]
func (h *FixedScheduleHandler) Create(c *gin.Context) {
	var req service.CreateFixedScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update a weekly pattern
// @Tags FixedSchedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body service.UpdateFixedScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /fixed-schedules/{id} [put]
func (h *FixedScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateFixedScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete a weekly pattern
// @Tags FixedSchedules
// @Param id path string true "Schedule ID"
// @Success 204 "No Content"
// @Router /fixed-schedules/{id} [delete]
func (h *FixedScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Enroll godoc
// @Summary Enroll a member in a weekly pattern
// @Tags FixedSchedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body enrollmentRequest true "Member email"
// @Success 200 {object} response.Envelope
// @Router /fixed-schedules/{id}/users [post]
func (h *FixedScheduleHandler) Enroll(c *gin.Context) {
	var req enrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Enroll(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Unenroll godoc
// @Summary Remove a member from a weekly pattern
// @Tags FixedSchedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Param email path string true "Member email"
// @Success 200 {object} response.Envelope
// @Router /fixed-schedules/{id}/users/{email} [delete]
func (h *FixedScheduleHandler) Unenroll(c *gin.Context) {
	slot, err := h.service.Unenroll(c.Request.Context(), c.Param("id"), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}
