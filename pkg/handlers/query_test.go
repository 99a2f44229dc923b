package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/apperrors"
	"github.com/docquery-inc/docquery-engine/pkg/models"
)

type stubQueryService struct {
	answer       *models.Answer
	err          error
	lastQuestion string
	lastFileKey  string
}

func (s *stubQueryService) Classify(ctx context.Context, question string) string {
	return models.AnswerText
}

func (s *stubQueryService) Answer(ctx context.Context, question, fileKey string) (*models.Answer, error) {
	s.lastQuestion = question
	s.lastFileKey = fileKey
	return s.answer, s.err
}

func postQuery(t *testing.T, h *QueryHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Query(rec, req)
	return rec
}

func TestQueryHandler_Success(t *testing.T) {
	svc := &stubQueryService{answer: &models.Answer{Type: "analytical", Answer: "Sum of revenue: 4,600"}}
	h := NewQueryHandler(svc, zap.NewNop())

	rec := postQuery(t, h, `{"question": "what is the total revenue", "file_key": "abc123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "analytical", got.Type)
	assert.Equal(t, "Sum of revenue: 4,600", got.Answer)

	assert.Equal(t, "what is the total revenue", svc.lastQuestion)
	assert.Equal(t, "abc123", svc.lastFileKey)
}

func TestQueryHandler_InvalidBody(t *testing.T) {
	h := NewQueryHandler(&stubQueryService{}, zap.NewNop())

	rec := postQuery(t, h, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_MissingQuestion(t *testing.T) {
	h := NewQueryHandler(&stubQueryService{}, zap.NewNop())

	rec := postQuery(t, h, `{"question": "   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question is required")
}

func TestQueryHandler_CollaboratorUnavailable(t *testing.T) {
	svc := &stubQueryService{err: apperrors.ErrCollaboratorUnavailable}
	h := NewQueryHandler(svc, zap.NewNop())

	rec := postQuery(t, h, `{"question": "total revenue"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "collaborator_unavailable")
}

func TestQueryHandler_InternalError(t *testing.T) {
	svc := &stubQueryService{err: errors.New("boom")}
	h := NewQueryHandler(svc, zap.NewNop())

	rec := postQuery(t, h, `{"question": "total revenue"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom", "internal details never leak to clients")
}
