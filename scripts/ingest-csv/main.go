// ingest-csv loads tabular files into the docquery-engine row store and
// embedding index so they become queryable through /api/query.
//
// CSV files are parsed as a single table. Any other file is treated as text:
// pipe-delimited tables inside it are extracted, and the remaining paragraphs
// are embedded as retrieval chunks for text answers.
//
// Usage: go run ./scripts/ingest-csv <file> [<file> ...]
//
// Configuration comes from config.yaml and the standard environment
// variables (PG*, AI_*), same as the server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/docquery-inc/docquery-engine/pkg/config"
	"github.com/docquery-inc/docquery-engine/pkg/database"
	"github.com/docquery-inc/docquery-engine/pkg/ingest"
	"github.com/docquery-inc/docquery-engine/pkg/llm"
	"github.com/docquery-inc/docquery-engine/pkg/logging"
	"github.com/docquery-inc/docquery-engine/pkg/repositories"
	"github.com/docquery-inc/docquery-engine/pkg/vectorstore"
)

var paragraphRe = regexp.MustCompile(`\n\s*\n`)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <file> [<file> ...]\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load("dev")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		ConnString:     cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.ConnectionString(), cfg.MigrationsPath, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
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
	svc := ingest.NewService(tables, store, logger)

	for _, path := range os.Args[1:] {
		if err := ingestFile(ctx, svc, path); err != nil {
			log.Fatalf("Failed to ingest %s: %v", path, err)
		}
	}
}

func ingestFile(ctx context.Context, svc ingest.Service, path string) error {
	fileKey, err := ingest.ComputeFileKey(path)
	if err != nil {
		return err
	}
	sourcePath := ingest.NormalizePath(path)

	var tables []ingest.Table
	var chunks []string

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		table, err := ingest.ParseCSVTable(f)
		if err != nil {
			return fmt.Errorf("parse csv: %w", err)
		}
		tables = []ingest.Table{table}
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text := string(raw)
		tables = ingest.ParsePipeTables(text)
		chunks = paragraphRe.Split(text, -1)
	}

	nTables, err := svc.IngestTables(ctx, fileKey, sourcePath, tables)
	if err != nil {
		return err
	}
	nChunks, err := svc.IngestChunks(ctx, fileKey, sourcePath, chunks)
	if err != nil {
		return err
	}

	fmt.Printf("%s: file_key=%s tables=%d chunks=%d\n", path, fileKey, nTables, nChunks)
	return nil
}
