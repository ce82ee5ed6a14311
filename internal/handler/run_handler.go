package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradeflow/internal/domain"
	"tradeflow/internal/service"
)

// RunHandler handles the prepare/generate endpoints of a filling run.
type RunHandler struct {
	generationService service.GenerationService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(generationService service.GenerationService) *RunHandler {
	return &RunHandler{generationService: generationService}
}

// PrepareRequest selects the templates for a run, with the extraction result
// when one is available.
type PrepareRequest struct {
	TemplateIDs []uuid.UUID           `json:"templateIds" binding:"required,min=1"`
	Data        *domain.ExtractedData `json:"data"`
}

// Prepare handles POST /api/v1/runs/prepare
func (h *RunHandler) Prepare(c *gin.Context) {
	var req PrepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "templateIds is required")
		return
	}

	configs, err := h.generationService.Prepare(c.Request.Context(), req.TemplateIDs, req.Data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"runs": configs})
}

// GenerateRequest carries the confirmed per-template run settings.
type GenerateRequest struct {
	Runs []service.RunRequest  `json:"runs" binding:"required,min=1"`
	Data *domain.ExtractedData `json:"data" binding:"required"`
}

// Generate handles POST /api/v1/runs/generate
func (h *RunHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "runs and data are required")
		return
	}

	artifacts, err := h.generationService.Generate(c.Request.Context(), req.Runs, req.Data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"artifacts": artifacts})
}
