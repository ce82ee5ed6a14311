package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradeflow/internal/domain"
	"tradeflow/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler handles extraction result export endpoints.
type ExportHandler struct{}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// ExportRequest carries the extraction result to export, plus an optional
// display name for the output file.
type ExportRequest struct {
	Name string                `json:"name"`
	Data *domain.ExtractedData `json:"data" binding:"required"`
}

// ExportXLSX handles POST /api/v1/export/xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "data is required")
		return
	}

	workbook, err := export.BuildWorkbook(req.Data)
	if err != nil {
		HandleError(c, err)
		return
	}

	name := req.Name
	if name == "" {
		name = req.Data.CustomerName
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.BuildFilename(name)))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}
