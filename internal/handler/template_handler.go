package handler

import (
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradeflow/internal/domain"
	"tradeflow/internal/filename"
	"tradeflow/internal/service"
)

// TemplateHandler handles form template management endpoints.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Upload handles POST /api/v1/templates
func (h *TemplateHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	tpl, err := h.templateService.Upload(c.Request.Context(), service.TemplateUploadInput{
		Name:   c.PostForm("name"),
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, tpl)
}

// List handles GET /api/v1/templates
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, templates)
}

// GetByID handles GET /api/v1/templates/:id
func (h *TemplateHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid template ID")
		return
	}

	detail, err := h.templateService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, detail)
}

// Download handles GET /api/v1/templates/:id/file
func (h *TemplateHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid template ID")
		return
	}

	tpl, payload, err := h.templateService.Bytes(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	name := path.Base(tpl.ObjectKey)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// UpdateSettings handles PUT /api/v1/templates/:id/settings
func (h *TemplateHandler) UpdateSettings(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid template ID")
		return
	}

	var settings domain.TemplateSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "invalid settings payload")
		return
	}

	if err := h.templateService.UpdateSettings(c.Request.Context(), id, settings); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "settings saved"})
}

// Delete handles DELETE /api/v1/templates/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid template ID")
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "template deleted"})
}

// Placeholders handles GET /api/v1/templates/placeholders
func (h *TemplateHandler) Placeholders(c *gin.Context) {
	RespondOK(c, gin.H{
		"placeholders":   filename.AvailablePlaceholders,
		"defaultPattern": filename.DefaultPattern,
	})
}
