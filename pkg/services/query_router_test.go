package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/apperrors"
	"github.com/docquery-inc/docquery-engine/pkg/llm"
	"github.com/docquery-inc/docquery-engine/pkg/models"
	"github.com/docquery-inc/docquery-engine/pkg/vectorstore"
)

type stubAnalytics struct {
	answer string
	err    error
	calls  int
}

func (s *stubAnalytics) Analyze(ctx context.Context, question, fileKey string) (string, error) {
	s.calls++
	return s.answer, s.err
}

func newRouterFixture(analytics AnalyticsService) (*vectorstore.MockStore, *llm.MockLLMClient, QueryService) {
	store := vectorstore.NewMockStore()
	client := llm.NewMockLLMClient()
	return store, client, NewQueryService(analytics, store, client, zap.NewNop())
}

func TestClassify_Rules(t *testing.T) {
	_, client, router := newRouterFixture(&stubAnalytics{})

	tests := []struct {
		question string
		want     string
	}{
		{"What was the total revenue in Q4?", models.AnswerAnalytical},
		{"how many orders did we get", models.AnswerAnalytical},
		{"show top 5 products", models.AnswerAnalytical},
		{"revenue higher than 1000", models.AnswerAnalytical},
		{"compare north vs south", models.AnswerAnalytical},
		{"Why did revenue drop in Q4?", models.AnswerHybrid},
		{"explain the q2 sales numbers", models.AnswerHybrid},
		{"what insights can you interpret here", models.AnswerHybrid},
		{"", models.AnswerText},
		{"   ", models.AnswerText},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got := router.Classify(context.Background(), tt.question)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Zero(t, client.GenerateResponseCalls, "rule matches never reach the LLM")
}

func TestClassify_LLMFallback(t *testing.T) {
	_, client, router := newRouterFixture(&stubAnalytics{})
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return " Analytical ", nil
	}

	got := router.Classify(context.Background(), "describe our sales trajectory")

	assert.Equal(t, models.AnswerAnalytical, got)
	assert.Equal(t, 1, client.GenerateResponseCalls)
}

func TestClassify_LLMFailureDefaultsToText(t *testing.T) {
	_, client, router := newRouterFixture(&stubAnalytics{})
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return "", errors.New("unavailable")
	}

	got := router.Classify(context.Background(), "tell me about the company")

	assert.Equal(t, models.AnswerText, got)
}

func TestAnswer_Analytical(t *testing.T) {
	analytics := &stubAnalytics{answer: "Sum of revenue: 4,600"}
	_, _, router := newRouterFixture(analytics)

	answer, err := router.Answer(context.Background(), "what is the total revenue", "")

	require.NoError(t, err)
	assert.Equal(t, &models.Answer{Type: models.AnswerAnalytical, Answer: "Sum of revenue: 4,600"}, answer)
	assert.Equal(t, 1, analytics.calls)
}

func TestAnswer_AnalyticalWithoutIngestedTables(t *testing.T) {
	analytics := &stubAnalytics{err: apperrors.ErrNoCandidateTable}
	_, _, router := newRouterFixture(analytics)

	answer, err := router.Answer(context.Background(), "what is the total revenue", "")

	require.NoError(t, err)
	assert.Equal(t, models.AnswerAnalytical, answer.Type)
	assert.Equal(t, "I couldn't find any ingested tables to answer that question.", answer.Answer)
}

func TestAnswer_Text(t *testing.T) {
	store, client, router := newRouterFixture(&stubAnalytics{})
	store.SimilaritySearchFunc = func(ctx context.Context, query string, k int, filter map[string]any) ([]vectorstore.SearchResult, error) {
		assert.Equal(t, 4, k)
		assert.Equal(t, "hybrid", filter["type"])
		return []vectorstore.SearchResult{
			{Document: vectorstore.Document{Content: "Our strategy focuses on enterprise."}},
		}, nil
	}
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		// First call classifies, second answers from context.
		if strings.Contains(prompt, "Classify this question") {
			return "text", nil
		}
		assert.Contains(t, prompt, "Our strategy focuses on enterprise.")
		assert.NotContains(t, prompt, "Analytical insight")
		return "The strategy centers on enterprise customers.", nil
	}

	answer, err := router.Answer(context.Background(), "tell me about the company culture", "")

	require.NoError(t, err)
	assert.Equal(t, models.AnswerText, answer.Type)
	assert.Equal(t, "The strategy centers on enterprise customers.", answer.Answer)
}

func TestAnswer_HybridFeedsAnalyticsIntoTextPrompt(t *testing.T) {
	analytics := &stubAnalytics{answer: "Sum of revenue q4: 1,234"}
	store, client, router := newRouterFixture(analytics)
	store.SimilaritySearchFunc = func(ctx context.Context, query string, k int, filter map[string]any) ([]vectorstore.SearchResult, error) {
		return []vectorstore.SearchResult{
			{Document: vectorstore.Document{Content: "Q4 saw churn in two accounts."}},
		}, nil
	}
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		assert.Contains(t, prompt, "Analytical insight:\nSum of revenue q4: 1,234")
		assert.Contains(t, prompt, "Q4 saw churn in two accounts.")
		return "Revenue dropped because two accounts churned.", nil
	}

	answer, err := router.Answer(context.Background(), "Why did revenue drop in Q4?", "")

	require.NoError(t, err)
	assert.Equal(t, models.AnswerHybrid, answer.Type)
	assert.Equal(t, "Revenue dropped because two accounts churned.", answer.Answer)
	assert.Equal(t, 1, analytics.calls)
}

func TestAnswer_TextRetrievalFailure(t *testing.T) {
	store, _, router := newRouterFixture(&stubAnalytics{})
	store.SimilaritySearchFunc = func(ctx context.Context, query string, k int, filter map[string]any) ([]vectorstore.SearchResult, error) {
		return nil, errors.New("connection reset")
	}

	_, err := router.Answer(context.Background(), "tell me about the company culture", "")

	assert.ErrorIs(t, err, apperrors.ErrCollaboratorUnavailable)
}
