package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/service"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
	"github.com/classbook/classbook-api/pkg/response"
)

// UserHandler manages member account endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler constructs handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List members
// @Tags Users
// @Produce json
// @Param plan query string false "Filter by plan"
// @Param search query string false "Search by name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter models.UserFilter
	filter.Plan = c.Query("plan")
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	users, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Get godoc
// @Summary Get a member by email
// @Tags Users
// @Produce json
// @Param email path string true "Member email"
// @Success 200 {object} response.Envelope
// @Router /users/{email} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Update godoc
// @Summary Update a member
// @Tags Users
// @Accept json
// @Produce json
// @Param email path string true "Member email"
// @Param payload body service.UpdateUserRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /users/{email} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.service.Update(c.Request.Context(), c.Param("email"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Delete a member
// @Tags Users
// @Param email path string true "Member email"
// @Success 204 "No Content"
// @Router /users/{email} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("email")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NextClass godoc
// @Summary Resolve the member's next scheduled class
// @Tags Users
// @Produce json
// @Param email path string true "Member email"
// @Param date query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /users/{email}/next-class [get]
func (h *UserHandler) NextClass(c *gin.Context) {
	referenceDate := c.Query("date")
	if referenceDate == "" {
		referenceDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", referenceDate); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	next, err := h.service.NextClass(c.Request.Context(), c.Param("email"), referenceDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"next_class": next}, nil)
}
