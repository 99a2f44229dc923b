package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/apperrors"
	"github.com/docquery-inc/docquery-engine/pkg/services"
)

// QueryRequest is the body of POST /api/query. FileKey optionally restricts
// table resolution to one ingested file.
type QueryRequest struct {
	Question string `json:"question"`
	FileKey  string `json:"file_key,omitempty"`
}

// QueryHandler exposes the query router over HTTP.
type QueryHandler struct {
	queries services.QueryService
	logger  *zap.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(queries services.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{queries: queries, logger: logger}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.Query)
}

// Query handles POST /api/query requests.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	logger := h.logger.With(zap.String("request_id", requestID))

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}

	answer, err := h.queries.Answer(r.Context(), req.Question, req.FileKey)
	if err != nil {
		logger.Error("Query failed", zap.Error(err))
		if errors.Is(err, apperrors.ErrCollaboratorUnavailable) {
			_ = ErrorResponse(w, http.StatusServiceUnavailable, "collaborator_unavailable",
				"a backing service is unavailable, try again shortly")
			return
		}
		_ = ErrorResponse(w, http.StatusInternalServerError, "query_failed", "failed to answer the question")
		return
	}

	logger.Debug("Answered question", zap.String("type", answer.Type))
	if err := WriteJSON(w, http.StatusOK, answer); err != nil {
		logger.Error("Failed to encode query response", zap.Error(err))
	}
}
