package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/llm"
	"github.com/docquery-inc/docquery-engine/pkg/logging"
	"github.com/docquery-inc/docquery-engine/pkg/models"
	"github.com/docquery-inc/docquery-engine/pkg/prompts"
)

// PlanDrafter asks the LLM for a candidate analytics plan. The draft is
// untrusted; the validator decides what survives.
type PlanDrafter interface {
	Draft(ctx context.Context, question string, schema *models.TableSchema, samples []models.SampleRow, hints []string) (*models.Plan, error)
}

type planDrafter struct {
	client llm.LLMClient
	logger *zap.Logger
}

// NewPlanDrafter creates a drafter backed by the given LLM client.
func NewPlanDrafter(client llm.LLMClient, logger *zap.Logger) PlanDrafter {
	return &planDrafter{
		client: client,
		logger: logger.Named("plan_drafter"),
	}
}

var _ PlanDrafter = (*planDrafter)(nil)

// planSchemaContext is the compact schema view serialized into the prompt.
type planSchemaContext struct {
	Columns   []models.ColumnSchema `json:"columns"`
	Samples   []models.SampleRow    `json:"samples"`
	Suggested []string              `json:"suggested"`
}

func (d *planDrafter) Draft(ctx context.Context, question string, schema *models.TableSchema, samples []models.SampleRow, hints []string) (*models.Plan, error) {
	contextJSON, err := json.Marshal(planSchemaContext{
		Columns:   schema.Columns,
		Samples:   samples,
		Suggested: hints,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal schema context: %w", err)
	}

	prompt := prompts.BuildPlanPrompt(string(contextJSON), question)
	response, err := d.client.GenerateResponse(ctx, prompt, "", 0.0)
	if err != nil {
		return nil, fmt.Errorf("draft plan: %w", err)
	}

	plan, err := llm.ParseJSONResponse[models.Plan](response)
	if err != nil {
		d.logger.Debug("Draft response did not parse",
			zap.String("response", logging.TruncateString(response, 200)))
		return nil, fmt.Errorf("parse plan JSON: %w", err)
	}

	// The draft may claim any table identity; the resolver's choice wins.
	plan.Table = schema.Table
	return &plan, nil
}
