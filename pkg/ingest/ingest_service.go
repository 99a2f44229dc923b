package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/models"
	"github.com/docquery-inc/docquery-engine/pkg/repositories"
	"github.com/docquery-inc/docquery-engine/pkg/vectorstore"
)

// Service persists extracted tables and text chunks: table rows and catalog
// records into Postgres, schema and chunk embeddings into the vector store.
type Service interface {
	// IngestTables stores tables under the file key and returns how many
	// were written. Tables without headers are skipped.
	IngestTables(ctx context.Context, fileKey, sourcePath string, tables []Table) (int, error)

	// IngestChunks embeds free-text chunks for retrieval-grounded answers.
	// Blank chunks are skipped; returns how many were written.
	IngestChunks(ctx context.Context, fileKey, sourcePath string, chunks []string) (int, error)
}

type service struct {
	tables repositories.TableRepository
	store  vectorstore.Store
	logger *zap.Logger
}

// NewService creates the ingestion service.
func NewService(tables repositories.TableRepository, store vectorstore.Store, logger *zap.Logger) Service {
	return &service{
		tables: tables,
		store:  store,
		logger: logger.Named("ingest"),
	}
}

var _ Service = (*service)(nil)

func (s *service) IngestTables(ctx context.Context, fileKey, sourcePath string, tables []Table) (int, error) {
	var docs []vectorstore.Document
	written := 0

	for idx, table := range tables {
		if len(table.Headers) == 0 {
			continue
		}

		normHeaders := make([]string, len(table.Headers))
		for i, h := range table.Headers {
			normHeaders[i] = NormalizeHeader(h)
		}
		normRows := make([]map[string]any, len(table.Rows))
		for i, row := range table.Rows {
			normRows[i] = NormalizeRow(row)
		}

		ref := models.TableRef{FileKey: fileKey, TableIndex: idx}
		entry := &models.CatalogEntry{
			FileKey:     fileKey,
			TableIndex:  idx,
			ColumnNames: normHeaders,
			RowCount:    len(normRows),
			SourcePath:  sourcePath,
		}
		if err := s.tables.UpsertCatalog(ctx, entry); err != nil {
			return written, fmt.Errorf("catalog table %s: %w", ref, err)
		}
		if err := s.tables.ReplaceRows(ctx, ref, normRows); err != nil {
			return written, fmt.Errorf("store rows for %s: %w", ref, err)
		}

		docs = append(docs, vectorstore.Document{
			ID: fmt.Sprintf("%s||table||%d||schema", fileKey, idx),
			Content: fmt.Sprintf("file=%s; table_index=%d; columns: %s; rows=%d",
				sourcePath, idx, strings.Join(table.Headers, ", "), len(normRows)),
			Metadata: map[string]any{
				"type":        "table_schema",
				"file_key":    fileKey,
				"table_index": idx,
				"headers":     normHeaders,
				"n_rows":      len(normRows),
			},
		})
		for j, name := range normHeaders {
			docs = append(docs, vectorstore.Document{
				ID:      fmt.Sprintf("%s||table||%d||col||%d", fileKey, idx, j),
				Content: fmt.Sprintf("file=%s; table_index=%d; column: %s", sourcePath, idx, name),
				Metadata: map[string]any{
					"type":        "column_schema",
					"file_key":    fileKey,
					"table_index": idx,
					"column_name": name,
				},
			})
		}
		written++
	}

	if len(docs) > 0 {
		if err := s.store.AddDocuments(ctx, docs); err != nil {
			return written, fmt.Errorf("embed schema documents: %w", err)
		}
	}

	s.logger.Info("Ingested tables",
		zap.String("file_key", fileKey),
		zap.Int("tables", written),
		zap.Int("schema_docs", len(docs)))
	return written, nil
}

func (s *service) IngestChunks(ctx context.Context, fileKey, sourcePath string, chunks []string) (int, error) {
	var docs []vectorstore.Document
	for i, chunk := range chunks {
		text := strings.TrimSpace(chunk)
		if text == "" {
			continue
		}
		docs = append(docs, vectorstore.Document{
			ID:      fmt.Sprintf("%s||chunk||%d", fileKey, i),
			Content: text,
			Metadata: map[string]any{
				"type":         "hybrid",
				"file_key":     fileKey,
				"source_path":  sourcePath,
				"content_hash": hashText(text),
			},
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if err := s.store.AddDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	s.logger.Info("Ingested chunks",
		zap.String("file_key", fileKey),
		zap.Int("chunks", len(docs)))
	return len(docs), nil
}

// hashText hashes whitespace-normalized text, so reflowed duplicates share a
// content hash.
func hashText(s string) string {
	normalized := whitespaceRe.ReplaceAllString(strings.ReplaceAll(s, "\u00a0", " "), " ")
	sum := sha256.Sum256([]byte(strings.TrimSpace(normalized)))
	return hex.EncodeToString(sum[:])
}
