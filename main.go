package main

import (
	"context"
	"log"
	"net/http"

	"github.com/docquery-inc/docquery-engine/pkg/config"
	"github.com/docquery-inc/docquery-engine/pkg/database"
	"github.com/docquery-inc/docquery-engine/pkg/handlers"
	"github.com/docquery-inc/docquery-engine/pkg/llm"
	"github.com/docquery-inc/docquery-engine/pkg/logging"
	"github.com/docquery-inc/docquery-engine/pkg/middleware"
	"github.com/docquery-inc/docquery-engine/pkg/repositories"
	"github.com/docquery-inc/docquery-engine/pkg/services"
	"github.com/docquery-inc/docquery-engine/pkg/vectorstore"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Log startup configuration
	log.Printf("Configuration loaded:")
	log.Printf("  Environment: %s", cfg.Env)
	log.Printf("  Database: %s", logging.SanitizeConnectionString(cfg.Database.ConnectionString()))
	log.Printf("  LLM endpoint: %s (model: %s)", cfg.AI.LLMBaseURL, cfg.AI.LLMModel)
	log.Printf("  Embedding model: %s", cfg.AI.EmbeddingModel)

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		ConnString:     cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		// Connection errors can echo the DSN, password included.
		log.Fatalf("Failed to connect to database: %s", logging.SanitizeError(err))
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.ConnectionString(), cfg.MigrationsPath, logger); err != nil {
		log.Fatalf("Failed to run migrations: %s", logging.SanitizeError(err))
	}

	llmClient, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.AI.LLMBaseURL,
		Model:    cfg.AI.LLMModel,
		APIKey:   cfg.AI.LLMAPIKey,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	store := vectorstore.NewPGVectorStore(db, llmClient, cfg.AI.EmbeddingModel, logger)
	tables := repositories.NewTableRepository(db)

	resolver := services.NewSchemaResolver(store, logger)
	hinter := services.NewColumnHinter(store, logger)
	drafter := services.NewPlanDrafter(llmClient, logger)
	analytics := services.NewAnalyticsService(resolver, hinter, drafter, tables, logger)
	queries := services.NewQueryService(analytics, store, llmClient, logger)

	mux := http.NewServeMux()

	// Register handlers
	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	queryHandler := handlers.NewQueryHandler(queries, logger)
	queryHandler.RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	log.Printf("Starting docquery-engine on port %s (version: %s)", cfg.Port, cfg.Version)
	if err := http.ListenAndServe(cfg.BindAddr+":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
