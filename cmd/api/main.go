package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/skillbridge/internal/config"
	"alfredoptarigan/skillbridge/internal/handlers"
	"alfredoptarigan/skillbridge/internal/logger"
	"alfredoptarigan/skillbridge/internal/middleware"
	"alfredoptarigan/skillbridge/internal/models"
	"alfredoptarigan/skillbridge/internal/repositories"
	"alfredoptarigan/skillbridge/internal/services"
)

// Multipart framing and the job description ride on top of the file itself.
const bodyLimitSlack = 1 << 20

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.Info("✅ Config loaded successfully", "env", cfg.Server.Env)

	if cfg.Gemini.APIKey == "" {
		slog.Warn("⚠️ GEMINI_API_KEY is not set, analysis requests will fail until it is configured")
	}

	// Run ledger is optional
	var runRepo repositories.AnalysisRunRepository
	recorder := services.NewNoopRunRecorder()
	if cfg.RunLog.Enabled {
		db, err := config.InitDatabase(cfg)
		if err != nil {
			slog.Error("❌ Failed to initialize database", "error", err)
			os.Exit(1)
		}
		runRepo = repositories.NewAnalysisRunRepository(db)
		recorder = services.NewRunRecorder(runRepo)
		slog.Info("✅ Run ledger enabled")
	}

	// Initialize services
	geminiService := services.NewGeminiService(services.GeminiOptions{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		VisionModel: cfg.Gemini.VisionModel,
	})
	promptBuilder := services.NewPromptBuilder()
	controller := services.NewRetryController(
		services.NewAnalysisClient(geminiService),
		cfg.Analysis.MaxAttempts,
		cfg.Analysis.AttemptTimeout,
	)
	pipeline := services.NewPipelineService(
		services.NewTextExtractorService(),
		services.NewOpticalExtractor(geminiService, promptBuilder),
		controller,
		recorder,
		services.PipelineOptions{
			OCREnabled: cfg.Analysis.OCREnabled,
			OCRTimeout: cfg.Analysis.OCRTimeout,
		},
	)
	slog.Info("✅ Services initialized successfully")

	// Initialize Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(pipeline, cfg.Storage.MaxFileSize, cfg.RunLog.Enabled)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SkillBridge API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + bodyLimitSlack,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestContext())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		ExposeHeaders: "X-Request-ID, X-Analysis-Mode, X-Resume-Text-Source, X-Run-ID",
	}))

	// Health check
	app.Get("/health", handlers.HandleHealth)

	// Routes
	api := app.Group("/api")
	api.Get("/health", handlers.HandleHealth)
	api.Post("/analyze", analyzeHandler.HandleAnalyze)

	if runRepo != nil {
		runHandler := handlers.NewRunHandler(runRepo)
		api.Get("/runs", runHandler.HandleListRuns)
		api.Get("/runs/:id", runHandler.HandleGetRun)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("❌ Server forced to shutdown", "error", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("🚀 SkillBridge API starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		slog.Error("❌ Failed to start server", "error", err)
		os.Exit(1)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An error occurred during analysis. Please try again."

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code == fiber.StatusRequestEntityTooLarge {
		message = "Resume file too large."
	}

	if code >= fiber.StatusInternalServerError {
		logger.Error(c.UserContext(), "❌ Unhandled error", "error", err)
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Error: message,
	})
}
