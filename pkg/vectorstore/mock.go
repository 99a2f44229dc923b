package vectorstore

import (
	"context"
)

// MockStore is a configurable mock for testing similarity search consumers.
// Set the function fields to control behavior in tests.
type MockStore struct {
	// AddDocumentsFunc is called when AddDocuments is invoked.
	// If nil, returns nil.
	AddDocumentsFunc func(ctx context.Context, docs []Document) error

	// SimilaritySearchFunc is called when SimilaritySearch is invoked.
	// If nil, returns no results.
	SimilaritySearchFunc func(ctx context.Context, query string, k int, filter map[string]any) ([]SearchResult, error)

	// Call tracking for verification
	AddDocumentsCalls     int
	SimilaritySearchCalls int
	LastFilter            map[string]any
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// AddDocuments implements Store.
func (m *MockStore) AddDocuments(ctx context.Context, docs []Document) error {
	m.AddDocumentsCalls++
	if m.AddDocumentsFunc != nil {
		return m.AddDocumentsFunc(ctx, docs)
	}
	return nil
}

// SimilaritySearch implements Store.
func (m *MockStore) SimilaritySearch(ctx context.Context, query string, k int, filter map[string]any) ([]SearchResult, error) {
	m.SimilaritySearchCalls++
	m.LastFilter = filter
	if m.SimilaritySearchFunc != nil {
		return m.SimilaritySearchFunc(ctx, query, k, filter)
	}
	return nil, nil
}

// Ensure MockStore implements Store at compile time.
var _ Store = (*MockStore)(nil)
