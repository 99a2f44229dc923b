package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/database"
	"github.com/docquery-inc/docquery-engine/pkg/llm"
	"github.com/docquery-inc/docquery-engine/pkg/retry"
)

// PGVectorStore implements Store over the schema_embeddings table using
// pgvector cosine distance. Embeddings come from the configured embedding
// endpoint.
type PGVectorStore struct {
	db             *database.DB
	embedder       llm.LLMClient
	embeddingModel string
	retryCfg       *retry.Config
	logger         *zap.Logger
}

// NewPGVectorStore creates a store over the given pool and embedding client.
func NewPGVectorStore(db *database.DB, embedder llm.LLMClient, embeddingModel string, logger *zap.Logger) *PGVectorStore {
	return &PGVectorStore{
		db:             db,
		embedder:       embedder,
		embeddingModel: embeddingModel,
		retryCfg:       retry.DefaultConfig(),
		logger:         logger.Named("vectorstore"),
	}
}

var _ Store = (*PGVectorStore)(nil)

// AddDocuments embeds all document contents in one batch and upserts them.
func (s *PGVectorStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	contents := make([]string, len(docs))
	for i, doc := range docs {
		contents[i] = doc.Content
	}

	embeddings, err := retry.DoWithResult(ctx, s.retryCfg, func() ([][]float32, error) {
		return s.embedder.CreateEmbeddings(ctx, contents, s.embeddingModel)
	})
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: got %d for %d documents", len(embeddings), len(docs))
	}

	const query = `
		INSERT INTO schema_embeddings (id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4::vector)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`

	for i, doc := range docs {
		metaJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
		}
		if _, err := s.db.Exec(ctx, query, doc.ID, doc.Content, metaJSON, vectorLiteral(embeddings[i])); err != nil {
			return fmt.Errorf("upsert document %s: %w", doc.ID, err)
		}
	}

	s.logger.Debug("Upserted documents", zap.Int("count", len(docs)))
	return nil
}

// SimilaritySearch embeds the query and returns the k nearest documents
// whose metadata contains all filter pairs.
func (s *PGVectorStore) SimilaritySearch(ctx context.Context, query string, k int, filter map[string]any) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}

	embedding, err := retry.DoWithResult(ctx, s.retryCfg, func() ([]float32, error) {
		return s.embedder.CreateEmbedding(ctx, query, s.embeddingModel)
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if filter == nil {
		filter = map[string]any{}
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("marshal filter: %w", err)
	}

	const stmt = `
		SELECT id, content, metadata, 1 - (embedding <=> $1::vector) AS score
		FROM schema_embeddings
		WHERE metadata @> $2::jsonb
		ORDER BY embedding <=> $1::vector
		LIMIT $3`

	rows, err := s.db.Query(ctx, stmt, vectorLiteral(embedding), filterJSON, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			result  SearchResult
			metaRaw []byte
		)
		if err := rows.Scan(&result.ID, &result.Content, &metaRaw, &result.Score); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		if len(metaRaw) > 0 {
			if err := json.Unmarshal(metaRaw, &result.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	return results, nil
}

// vectorLiteral renders an embedding in pgvector's input format: [v1,v2,...]
func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
