package main

import (
	"context"
	"log"

	"alfredoptarigan/ats-resume-analyzer/internal/config"
	"alfredoptarigan/ats-resume-analyzer/internal/repositories"
	"alfredoptarigan/ats-resume-analyzer/internal/services"
)

func main() {
	log.Println("🚀 Starting analysis reindex...")

	// Load configuration
	cfg := config.Load()
	if !cfg.IndexEnabled() {
		log.Fatalf("❌ QDRANT_URL is not set; nothing to reindex into")
	}
	if cfg.Database.Driver == config.DriverMemory {
		log.Fatalf("❌ DB_DRIVER=memory has no stored analyses to reindex")
	}

	ctx := context.Background()

	db, err := config.InitDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	analysisRepo := repositories.NewAnalysisRepository(db)

	// Initialize services
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	index, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := index.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	history := services.NewHistoryService(analysisRepo, index, cfg.Analysis.HistoryLimit, cfg.Analysis.StatsWindow)

	indexed, err := history.Reindex(ctx)
	if err != nil {
		log.Fatalf("❌ Reindex failed: %v", err)
	}

	log.Println("\n" + "============================================================")
	log.Printf("✅ Reindex completed: %d analyses indexed", indexed)
	log.Println("============================================================")
}
