package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/apperrors"
	"github.com/docquery-inc/docquery-engine/pkg/llm"
	"github.com/docquery-inc/docquery-engine/pkg/models"
	"github.com/docquery-inc/docquery-engine/pkg/prompts"
	"github.com/docquery-inc/docquery-engine/pkg/vectorstore"
)

// QueryService is the engine's upward interface: classify a question and
// produce the matching answer kind.
type QueryService interface {
	// Classify labels a question analytical, hybrid, or text.
	Classify(ctx context.Context, question string) string

	// Answer routes the question and returns the final answer.
	Answer(ctx context.Context, question, fileKey string) (*models.Answer, error)
}

type queryService struct {
	analytics AnalyticsService
	store     vectorstore.Store
	client    llm.LLMClient
	logger    *zap.Logger
}

// NewQueryService creates the router over the analytics pipeline and the
// text retrieval path.
func NewQueryService(analytics AnalyticsService, store vectorstore.Store, client llm.LLMClient, logger *zap.Logger) QueryService {
	return &queryService{
		analytics: analytics,
		store:     store,
		client:    client,
		logger:    logger.Named("query_router"),
	}
}

var _ QueryService = (*queryService)(nil)

// Rule-based classification signals. Checked as substrings of the lowercased
// question, mirroring how people actually phrase these.
var (
	aggWords = []string{
		"sum", "total", "average", "avg", "mean", "median", "count", "max", "min",
		"top", "rank", "percentage", "percent", "%", "rate", "growth", "change",
	}
	explainWords = []string{"explain", "why", "insight", "insights", "interpret", "reason", "highlight", "analysis"}
	compareWords = []string{"between", "vs", "versus", "compare", "difference", "higher", "lower", "than"}
	analyticPhrases = []string{
		"how many", "what is the average", "what's the average",
		"how much", "calculate", "compute", "what is the total",
	}

	numberLikeRe  = regexp.MustCompile(`\b\d+([.,]\d+)?(%|\b)`)
	quarterLikeRe = regexp.MustCompile(`\bq[1-4]\b|quarter\s*\d\b`)
	topKLikeRe    = regexp.MustCompile(`\btop\s+\d+\b`)
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func (s *queryService) Classify(ctx context.Context, question string) string {
	if strings.TrimSpace(question) == "" {
		return models.AnswerText
	}

	ql := strings.ToLower(question)
	trimmed := strings.TrimSpace(ql)

	hasAgg := containsAny(ql, aggWords) || containsAny(ql, analyticPhrases)
	hasCompare := containsAny(ql, compareWords)
	hasExplain := containsAny(ql, explainWords) ||
		strings.HasPrefix(trimmed, "why") || strings.HasPrefix(trimmed, "explain")

	if hasAgg || hasCompare || numberLikeRe.MatchString(ql) || quarterLikeRe.MatchString(ql) || topKLikeRe.MatchString(ql) {
		if hasExplain {
			return models.AnswerHybrid
		}
		return models.AnswerAnalytical
	}
	if hasExplain && (strings.Contains(ql, "insight") || strings.Contains(ql, "interpret")) {
		return models.AnswerHybrid
	}

	// No clear rule match; let the model decide the nuanced cases.
	response, err := s.client.GenerateResponse(ctx, prompts.BuildClassifyPrompt(question), "", 0.0)
	if err != nil {
		s.logger.Warn("Classification fallback failed, defaulting to text", zap.Error(err))
		return models.AnswerText
	}
	result := strings.ToLower(strings.TrimSpace(response))
	switch {
	case strings.Contains(result, models.AnswerHybrid):
		return models.AnswerHybrid
	case strings.Contains(result, models.AnswerAnalytical):
		return models.AnswerAnalytical
	default:
		return models.AnswerText
	}
}

func (s *queryService) Answer(ctx context.Context, question, fileKey string) (*models.Answer, error) {
	qtype := s.Classify(ctx, question)
	s.logger.Debug("Classified question", zap.String("type", qtype))

	switch qtype {
	case models.AnswerText:
		answer, err := s.answerText(ctx, question, "")
		if err != nil {
			return nil, err
		}
		return &models.Answer{Type: models.AnswerText, Answer: answer}, nil

	case models.AnswerAnalytical:
		answer, err := s.analyze(ctx, question, fileKey)
		if err != nil {
			return nil, err
		}
		return &models.Answer{Type: models.AnswerAnalytical, Answer: answer}, nil

	default: // hybrid: compute first, then explain with the numbers in hand
		insight, err := s.analyze(ctx, question, fileKey)
		if err != nil {
			return nil, err
		}
		answer, err := s.answerText(ctx, question, insight)
		if err != nil {
			return nil, err
		}
		return &models.Answer{Type: models.AnswerHybrid, Answer: answer}, nil
	}
}

// analyze runs the analytics pipeline, translating "no tables ingested"
// into a plain answer instead of an error.
func (s *queryService) analyze(ctx context.Context, question, fileKey string) (string, error) {
	answer, err := s.analytics.Analyze(ctx, question, fileKey)
	if errors.Is(err, apperrors.ErrNoCandidateTable) {
		return "I couldn't find any ingested tables to answer that question.", nil
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

// answerText answers from retrieved text chunks, optionally grounding the
// response in a computed analytical insight.
func (s *queryService) answerText(ctx context.Context, question, insight string) (string, error) {
	results, err := s.store.SimilaritySearch(ctx, question, 4, map[string]any{"type": "hybrid"})
	if err != nil {
		return "", fmt.Errorf("retrieve context chunks: %w: %w", apperrors.ErrCollaboratorUnavailable, err)
	}

	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}

	prompt := prompts.BuildTextAnswerPrompt(question, strings.Join(contents, "\n\n"), insight)
	response, err := s.client.GenerateResponse(ctx, prompt, "", 0.0)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return strings.TrimSpace(response), nil
}
