// Package router wires handlers and middleware into the Gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	"tradeflow/internal/handler"
	"tradeflow/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	extractionH *handler.ExtractionHandler,
	templateH *handler.TemplateHandler,
	runH *handler.RunHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Source document extraction
	v1.POST("/extract", extractionH.Extract)

	// Form template management
	templates := v1.Group("/templates")
	templates.POST("", templateH.Upload)
	templates.GET("", templateH.List)
	templates.GET("/placeholders", templateH.Placeholders)
	templates.GET("/:id", templateH.GetByID)
	templates.GET("/:id/file", templateH.Download)
	templates.PUT("/:id/settings", templateH.UpdateSettings)
	templates.DELETE("/:id", templateH.Delete)

	// Filling runs
	runs := v1.Group("/runs")
	runs.POST("/prepare", runH.Prepare)
	runs.POST("/generate", runH.Generate)

	// Extraction export
	v1.POST("/export/xlsx", exportH.ExportXLSX)

	return r
}
