package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classbook/classbook-api/internal/middleware"
	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/service"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
	"github.com/classbook/classbook-api/pkg/response"
)

// ExportHandler manages asynchronous availability export endpoints.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

type createExportRequest struct {
	Format        string `json:"format" binding:"required,oneof=csv pdf"`
	ReferenceDate string `json:"reference_date" binding:"required"`
}

// Create godoc
// @Summary Queue a weekly availability export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body createExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req createExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	createdBy := ""
	if claims := middleware.ClaimsFrom(c); claims != nil {
		createdBy = claims.Email
	}

	job, err := h.service.CreateJob(c.Request.Context(), service.CreateExportRequest{
		Format:        models.ExportFormat(req.Format),
		ReferenceDate: req.ReferenceDate,
	}, createdBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Get export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export via its signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter is required"))
		return
	}
	download, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(download.FilePath, download.Filename)
}
