package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/apperrors"
	"github.com/docquery-inc/docquery-engine/pkg/models"
	"github.com/docquery-inc/docquery-engine/pkg/vectorstore"
)

// SchemaResolver picks the table most relevant to a question.
type SchemaResolver interface {
	// Resolve returns the best-matching ingested table. A non-empty fileKey
	// restricts candidates to that source file.
	Resolve(ctx context.Context, question, fileKey string) (models.TableRef, error)
}

type schemaResolver struct {
	store  vectorstore.Store
	logger *zap.Logger
}

// NewSchemaResolver creates a resolver over table_schema embeddings.
func NewSchemaResolver(store vectorstore.Store, logger *zap.Logger) SchemaResolver {
	return &schemaResolver{
		store:  store,
		logger: logger.Named("schema_resolver"),
	}
}

var _ SchemaResolver = (*schemaResolver)(nil)

func (r *schemaResolver) Resolve(ctx context.Context, question, fileKey string) (models.TableRef, error) {
	filter := map[string]any{"type": "table_schema"}
	if fileKey != "" {
		filter["file_key"] = fileKey
	}

	results, err := r.store.SimilaritySearch(ctx, question, 3, filter)
	if err != nil {
		return models.TableRef{}, fmt.Errorf("search table schemas: %w: %w", apperrors.ErrCollaboratorUnavailable, err)
	}
	if len(results) == 0 {
		return models.TableRef{}, apperrors.ErrNoCandidateTable
	}

	top := results[0]
	ref := models.TableRef{
		FileKey:    metadataString(top.Metadata, "file_key"),
		TableIndex: metadataInt(top.Metadata, "table_index"),
	}
	if ref.FileKey == "" {
		return models.TableRef{}, fmt.Errorf("table schema document %s has no file_key: %w", top.ID, apperrors.ErrNoCandidateTable)
	}

	r.logger.Debug("Resolved table",
		zap.String("table", ref.String()),
		zap.Float64("score", top.Score),
		zap.Int("candidates", len(results)))
	return ref, nil
}

func metadataString(md map[string]any, key string) string {
	if s, ok := md[key].(string); ok {
		return s
	}
	return ""
}

// metadataInt reads an integer that JSON decoding may have widened to float64.
func metadataInt(md map[string]any, key string) int {
	switch v := md[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}
