package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/apperrors"
	"github.com/docquery-inc/docquery-engine/pkg/logging"
	"github.com/docquery-inc/docquery-engine/pkg/models"
	"github.com/docquery-inc/docquery-engine/pkg/repositories"
	sqlutil "github.com/docquery-inc/docquery-engine/pkg/sql"
)

const (
	maxSampleColumns = 24
	sampleRowCount   = 8
	sampleCellLimit  = 60
)

// AnalyticsService answers analytical questions over ingested tables by
// resolving a table, drafting and validating a plan, compiling it to SQL,
// and summarizing the executed rows.
type AnalyticsService interface {
	Analyze(ctx context.Context, question, fileKey string) (string, error)
}

type analyticsService struct {
	resolver SchemaResolver
	hinter   ColumnHinter
	drafter  PlanDrafter
	tables   repositories.TableRepository
	logger   *zap.Logger
}

// NewAnalyticsService wires the planning pipeline together.
func NewAnalyticsService(
	resolver SchemaResolver,
	hinter ColumnHinter,
	drafter PlanDrafter,
	tables repositories.TableRepository,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsService{
		resolver: resolver,
		hinter:   hinter,
		drafter:  drafter,
		tables:   tables,
		logger:   logger.Named("analytics"),
	}
}

var _ AnalyticsService = (*analyticsService)(nil)

func (s *analyticsService) Analyze(ctx context.Context, question, fileKey string) (string, error) {
	ref, err := s.resolver.Resolve(ctx, question, fileKey)
	if err != nil {
		return "", err
	}

	headers, err := s.tables.ColumnNames(ctx, ref)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}
	if len(headers) == 0 {
		return "I couldn't find any columns in the selected table.", nil
	}

	hints := s.hinter.Hints(ctx, question, ref, headers)

	sampleCols := headers
	if len(sampleCols) > maxSampleColumns {
		sampleCols = sampleCols[:maxSampleColumns]
	}
	samples, err := s.tables.SampleRows(ctx, ref, sampleCols, sampleRowCount)
	if err != nil {
		return "", fmt.Errorf("sample table %s: %w", ref, err)
	}
	samples = trimSamples(samples, sampleCellLimit)

	schema := &models.TableSchema{
		Table:   ref,
		Columns: InferColumnKinds(headers, samples),
	}

	plan := s.buildPlan(ctx, question, schema, samples, hints)

	stmt, args := CompilePlan(plan, schema)
	stmt, err = screenStatement(stmt, args)
	if err != nil {
		s.logger.Warn("Rejected compiled statement",
			zap.String("table", ref.String()),
			zap.Error(err))
		return "", err
	}

	s.logger.Debug("Executing compiled plan",
		zap.String("table", ref.String()),
		zap.String("sql", logging.SanitizeQuery(stmt)),
		zap.Int("args", len(args)))

	rows, err := s.tables.Query(ctx, stmt, args)
	if err != nil {
		return "", fmt.Errorf("execute plan for %s: %w", ref, err)
	}

	return Summarize(plan, rows), nil
}

// screenStatement applies the single-statement guard and the injection
// screen to a compiled statement before it reaches the row store, returning
// the normalized SQL.
func screenStatement(stmt string, args []any) (string, error) {
	check := sqlutil.ValidateAndNormalize(stmt)
	if check.Error != nil {
		return "", fmt.Errorf("compiled statement rejected: %w", check.Error)
	}
	if hits := sqlutil.CheckAllParameters(args); len(hits) > 0 {
		return "", fmt.Errorf("filter value at position %d failed the injection screen", hits[0].Position)
	}
	return check.NormalizedSQL, nil
}

// buildPlan drafts a plan and validates it, falling back to intent synthesis
// when the draft fails to parse, fails validation, or aggregates nothing.
func (s *analyticsService) buildPlan(ctx context.Context, question string, schema *models.TableSchema, samples []models.SampleRow, hints []string) *models.Plan {
	draft, err := s.drafter.Draft(ctx, question, schema, samples, hints)
	if err != nil {
		s.logger.Warn("Plan draft failed, synthesizing fallback", zap.Error(err))
		return SynthesizeFallbackPlan(question, schema, nil)
	}

	if reason := ValidateAndNormalizePlan(draft, schema, question); reason != "" {
		s.logger.Warn("Plan rejected, synthesizing fallback", zap.String("reason", reason))
		return SynthesizeFallbackPlan(question, schema, draft)
	}
	if len(draft.Aggregates) == 0 {
		s.logger.Debug("Plan has no aggregates, synthesizing fallback")
		return SynthesizeFallbackPlan(question, schema, draft)
	}
	return draft
}

// trimSamples caps cell values shown to the drafting model.
func trimSamples(samples []models.SampleRow, maxChars int) []models.SampleRow {
	trimmed := make([]models.SampleRow, len(samples))
	for i, row := range samples {
		out := make(models.SampleRow, len(row))
		for k, v := range row {
			if r := []rune(v); len(r) > maxChars {
				v = string(r[:maxChars]) + "…"
			}
			out[k] = v
		}
		trimmed[i] = out
	}
	return trimmed
}
