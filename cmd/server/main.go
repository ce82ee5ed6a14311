package main

import (
	"fmt"
	"log"

	"tradeflow/internal/ai/gemini"
	"tradeflow/internal/config"
	"tradeflow/internal/handler"
	"tradeflow/internal/mapping"
	"tradeflow/internal/repository/postgres"
	"tradeflow/internal/router"
	"tradeflow/internal/service"
	s3storage "tradeflow/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	templateRepo := postgres.NewTemplateRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize the AI client and the mapping cascade
	aiClient := gemini.NewClient(&cfg.AI)
	resolver := mapping.NewResolver(aiClient)

	// Initialize services
	extractionSvc := service.NewExtractionService(aiClient, &cfg.S3)
	templateSvc := service.NewTemplateService(templateRepo, s3Client, &cfg.S3)
	generationSvc := service.NewGenerationService(templateRepo, s3Client, resolver)

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	templateH := handler.NewTemplateHandler(templateSvc)
	runH := handler.NewRunHandler(generationSvc)
	exportH := handler.NewExportHandler()
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, extractionH, templateH, runH, exportH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
