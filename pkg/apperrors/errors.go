package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrNoCandidateTable means schema resolution found no table for the
	// question. Fatal for the analytical flow; the router turns it into a
	// plain-language "no data" answer rather than a failure response.
	ErrNoCandidateTable = errors.New("no candidate tables found")

	// ErrCollaboratorUnavailable wraps infrastructure failures (row store,
	// vector store, LLM endpoint) that have no local fallback.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)
