package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
	"github.com/custodia-labs/voxmail-core/internal/runtime"
)

// planSystemPrompt constrains the model to structured JSON only.
const planSystemPrompt = `You turn a spoken question about an email inbox into a search plan. ` +
	`Respond with a single JSON object and nothing else. Keys: ` +
	`"searchQuery" (string or null: provider search terms, null when listing recent mail is enough), ` +
	`"includeAttachments" (boolean: true when attachment content is needed to answer), ` +
	`"limit" (integer 1-10: how many messages to consider).`

// Planner turns a natural-language question into a query plan with a single
// language-model call.
type Planner struct {
	services *runtime.Services
}

// NewPlanner creates a planner.
// The LLM service is accessed dynamically via runtime.Services.
func NewPlanner(services *runtime.Services) *Planner {
	return &Planner{services: services}
}

// rawPlan mirrors the model's JSON. Pointer fields distinguish missing keys
// from zero values.
type rawPlan struct {
	SearchQuery        *string `json:"searchQuery"`
	IncludeAttachments *bool   `json:"includeAttachments"`
	Limit              *int    `json:"limit"`
}

// Plan produces a normalised query plan for the question. Malformed JSON
// from the model is fatal for this call and propagates; callers must not
// retry more than once.
func (p *Planner) Plan(ctx context.Context, question string) (*domain.QueryPlan, error) {
	llm := p.services.LLMService()
	if llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	payload, err := llm.CompleteJSON(ctx, driven.CompletionRequest{
		System: planSystemPrompt,
		Prompt: question,
	})
	if err != nil {
		return nil, fmt.Errorf("plan completion: %w", err)
	}

	var raw rawPlan
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlanParse, err)
	}

	plan := &domain.QueryPlan{}
	if raw.SearchQuery != nil {
		plan.SearchQuery = *raw.SearchQuery
	}
	if raw.IncludeAttachments != nil {
		plan.IncludeAttachments = *raw.IncludeAttachments
	}
	if raw.Limit != nil {
		plan.Limit = *raw.Limit
	}
	plan.Normalise()
	return plan, nil
}
