// Package vectorstore provides similarity search over schema and chunk
// documents, backed by Postgres with the pgvector extension.
package vectorstore

import (
	"context"
)

// Document is one embedded record: schema descriptions (type=table_schema,
// type=column_schema) and text chunks (type=hybrid) all share this shape.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// SearchResult is a document plus its similarity score (higher is closer).
type SearchResult struct {
	Document
	Score float64
}

// Store is the similarity-search collaborator interface. Implementations
// must be safe for concurrent use; the engine shares one store across
// requests.
type Store interface {
	// AddDocuments embeds and upserts documents by ID.
	AddDocuments(ctx context.Context, docs []Document) error

	// SimilaritySearch returns the k closest documents whose metadata
	// matches every key/value pair of filter. A nil or empty filter matches
	// all documents.
	SimilaritySearch(ctx context.Context, query string, k int, filter map[string]any) ([]SearchResult, error)
}
