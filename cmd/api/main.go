package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"alfredoptarigan/ats-resume-analyzer/internal/config"
	"alfredoptarigan/ats-resume-analyzer/internal/handlers"
	"alfredoptarigan/ats-resume-analyzer/internal/repositories"
	"alfredoptarigan/ats-resume-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx := context.Background()

	// Initialize repositories
	var (
		analysisRepo repositories.AnalysisRepository
		userRepo     repositories.UserRepository
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		analysisRepo = repositories.NewMemoryAnalysisRepository()
		userRepo = repositories.NewMemoryUserRepository()
		log.Println("⚠️  Using in-memory store; analyses are lost on restart")
	default:
		db, err := config.InitDatabase(ctx, cfg)
		if err != nil {
			log.Fatalf("❌ Failed to initialize database: %v", err)
		}
		analysisRepo = repositories.NewAnalysisRepository(db)
		userRepo = repositories.NewUserRepository(db)
	}
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	if _, err := exec.LookPath(cfg.Render.PdftoppmPath); err != nil {
		log.Printf("⚠️  %s not found; PDF rendering will fail until poppler-utils is installed\n", cfg.Render.PdftoppmPath)
	}

	normalizer := services.NewDocumentNormalizer(
		services.NewPDFParserService(),
		services.NewPopplerRasterizer(cfg.Render.PdftoppmPath, cfg.Render.DPI),
		cfg.Storage.MaxFileSize,
		cfg.Render.JPEGQuality,
	)
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	gateway := services.NewInferenceGateway(geminiService, cfg.Gemini.Timeout)
	log.Printf("✅ Gemini AI initialized successfully (model %s)\n", cfg.Gemini.Model)

	// Initialize Qdrant
	var index services.AnalysisIndex
	if cfg.IndexEnabled() {
		index, err = services.NewQdrantIndex(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			geminiService,
		)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := index.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		log.Println("✅ Qdrant initialized successfully")
	} else {
		log.Println("⚠️  QDRANT_URL not set; similar analysis search disabled")
	}

	catalog := services.NewPromptCatalog()
	analyzer := services.NewAnalyzer(analysisRepo, normalizer, catalog, gateway, index, services.AnalyzerOptions{
		MaxFileSize:            cfg.Storage.MaxFileSize,
		PersistFailedInference: cfg.Analysis.PersistFailedInference,
	})
	history := services.NewHistoryService(analysisRepo, index, cfg.Analysis.HistoryLimit, cfg.Analysis.StatsWindow)
	authService := services.NewAuthService(userRepo, 0)
	log.Println("✅ Analyzer initialized")

	// Initialize Handlers
	sessionStore := session.New(session.Config{
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		Expiration:     cfg.Session.TTL,
		CookieSecure:   cfg.Session.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	apiHandler := handlers.NewAnalysisHandler(analyzer, history, catalog, handlers.AnonymousScope)
	appHandler := handlers.NewAnalysisHandler(analyzer, history, catalog, handlers.SessionOwner)
	authHandler := handlers.NewAuthHandler(authService, sessionStore)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ATS Resume Analyzer API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		// room for the multipart envelope and form fields
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: handlers.NewErrorHandler(cfg.Storage.MaxFileSize),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	api := app.Group("/api/v1")
	api.Get("/health", handlers.HandleHealth)
	apiHandler.Register(api)

	web := app.Group("/app")
	authHandler.Register(web)
	appHandler.Register(web, authHandler.RequireLogin)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ATS Resume Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/analyze",
				"GET /api/v1/analyses",
				"GET /api/v1/analyses/similar",
				"GET /api/v1/analyses/:id",
				"DELETE /api/v1/analyses/:id",
				"GET /api/v1/stats",
				"GET /api/v1/prompts",
				"GET /api/v1/health",
				"POST /app/register",
				"POST /app/login",
				"POST /app/logout",
				"GET /app/me",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
