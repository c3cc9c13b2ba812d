package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"contestacao-backend/config"
	"contestacao-backend/extractor"
	"contestacao-backend/handlers"
	"contestacao-backend/llm"
	"contestacao-backend/logging"
	"contestacao-backend/render"
	"contestacao-backend/service"
	"contestacao-backend/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load .env file from the working directory or the project root
	cfg, found := config.Load()

	flush, err := logging.Install(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer flush()

	if !found {
		zap.L().Warn("No .env file found, using environment variables")
	}

	if err := run(cfg); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
		flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	// Initialize storage
	store, err := storage.NewStorageFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	zap.L().Info("Storage initialized", zap.String("type", string(storage.ConfigFromEnv().Type)))

	// Initialize the model backend
	generator, err := initGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s generator: %w", cfg.LLMProvider, err)
	}

	renderCfg := render.DefaultConfig()
	renderCfg.Letterhead = cfg.Letterhead

	// Initialize services
	contestationService := service.NewContestationService(
		service.WithExtractor(extractor.NewPDFExtractor()),
		service.WithGenerator(generator),
		service.WithResultStore(store),
		service.WithRenderer(render.NewRenderer(renderCfg)),
		service.WithMinLength(cfg.MinContestationLength),
		service.WithLawyer(cfg.Lawyer),
		service.WithDefaultComarca(cfg.DefaultComarca),
	)

	// Initialize handlers
	contestationHandler := handlers.NewContestationHandler(contestationService, cfg.MaxUploadBytes, cfg.ResultCookie)

	// Setup Gin router
	gin.SetMode(cfg.GinMode)
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	handlers.RegisterRoutes(r, contestationHandler, cfg.DebugRoutes)

	zap.L().Info("Server starting", zap.String("port", cfg.Port), zap.Bool("debug_routes", cfg.DebugRoutes))
	return r.Run(":" + cfg.Port)
}

func initGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	llmCfg := llm.Config{
		Provider:  llm.Provider(cfg.LLMProvider),
		APIKey:    cfg.GeminiAPIKey,
		ProjectID: cfg.GCPProjectID,
		Region:    cfg.VertexAIRegion,
	}
	switch llmCfg.Provider {
	case llm.ProviderOllama:
		llmCfg.Model = cfg.OllamaModel
	default:
		llmCfg.Model = cfg.GeminiModel
		if llmCfg.Provider != llm.ProviderVertex && cfg.GeminiAPIKey == "" {
			zap.L().Warn("GEMINI_API_KEY not set")
		}
	}

	generator, err := llm.NewGenerator(ctx, llmCfg)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Model backend initialized", zap.String("provider", cfg.LLMProvider), zap.String("model", llmCfg.Model))
	return generator, nil
}
