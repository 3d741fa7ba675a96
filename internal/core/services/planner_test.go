package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/voxmail-core/internal/runtime"
)

func newTestPlanner(llm *mocks.MockLLMService) *Planner {
	services := runtime.NewServices(domain.TTSConfig{})
	services.SetLLMService(llm)
	return NewPlanner(services)
}

func TestPlanner_Plan(t *testing.T) {
	llm := mocks.NewMockLLMService()
	llm.JSONResponses = []string{`{"searchQuery":"finance report","includeAttachments":true,"limit":3}`}
	planner := newTestPlanner(llm)

	plan, err := planner.Plan(context.Background(), "what did finance send?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.SearchQuery != "finance report" {
		t.Errorf("unexpected search query: %q", plan.SearchQuery)
	}
	if !plan.IncludeAttachments {
		t.Error("expected include attachments")
	}
	if plan.Limit != 3 {
		t.Errorf("expected limit 3, got %d", plan.Limit)
	}
	if llm.CompleteJSONCalls != 1 {
		t.Errorf("expected exactly one model call, got %d", llm.CompleteJSONCalls)
	}
}

func TestPlanner_Plan_MockDefaultMatchesWireKeys(t *testing.T) {
	llm := mocks.NewMockLLMService()

	raw, err := llm.CompleteJSON(context.Background(), driven.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every key in the stock response must land on a rawPlan field, so the
	// planner genuinely parses it rather than ignoring unknown keys.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var plan rawPlan
	if err := dec.Decode(&plan); err != nil {
		t.Fatalf("stock plan response does not match the wire shape: %v", err)
	}
	if plan.IncludeAttachments == nil || plan.Limit == nil {
		t.Errorf("stock plan response must set the wire keys, got %+v", plan)
	}
}

func TestPlanner_Plan_DefensiveDefaults(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantQuery string
		wantAtt   bool
		wantLimit int
	}{
		{"all missing", `{}`, "", false, 5},
		{"null search query", `{"searchQuery":null}`, "", false, 5},
		{"negative limit clamped", `{"limit":-5}`, "", false, 1},
		{"huge limit clamped", `{"limit":999}`, "", false, 10},
		{"zero limit defaulted", `{"limit":0}`, "", false, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := mocks.NewMockLLMService()
			llm.JSONResponses = []string{tt.response}
			planner := newTestPlanner(llm)

			plan, err := planner.Plan(context.Background(), "question")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.SearchQuery != tt.wantQuery {
				t.Errorf("expected query %q, got %q", tt.wantQuery, plan.SearchQuery)
			}
			if plan.IncludeAttachments != tt.wantAtt {
				t.Errorf("expected includeAttachments %v", tt.wantAtt)
			}
			if plan.Limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, plan.Limit)
			}
		})
	}
}

func TestPlanner_Plan_MalformedJSON(t *testing.T) {
	llm := mocks.NewMockLLMService()
	llm.JSONResponses = []string{`not json at all`}
	planner := newTestPlanner(llm)

	_, err := planner.Plan(context.Background(), "question")
	if !errors.Is(err, domain.ErrPlanParse) {
		t.Errorf("expected ErrPlanParse, got %v", err)
	}
}

func TestPlanner_Plan_NoLLM(t *testing.T) {
	planner := NewPlanner(runtime.NewServices(domain.TTSConfig{}))

	_, err := planner.Plan(context.Background(), "question")
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Errorf("expected ErrLLMUnavailable, got %v", err)
	}
}
