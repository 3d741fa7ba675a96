package domain

const (
	// PlanLimitMin and PlanLimitMax bound how many messages a plan may request.
	PlanLimitMin = 1
	PlanLimitMax = 10

	// PlanLimitDefault is used when the planner omits a limit.
	PlanLimitDefault = 5
)

// QueryPlan is the structured query produced by the planner for a question.
// It is created once per question and immutable after Normalise.
type QueryPlan struct {
	// SearchQuery is the provider-side search filter. Empty means no filter.
	SearchQuery string `json:"search_query,omitempty"`

	// IncludeAttachments requests attachment content in the answer context.
	IncludeAttachments bool `json:"include_attachments"`

	// Limit is the maximum number of messages to consider.
	Limit int `json:"limit"`
}

// Normalise clamps the plan into its invariant bounds. The planner's raw
// output is not trusted: out-of-range limits are clamped silently rather
// than failing the request.
func (p *QueryPlan) Normalise() {
	if p.Limit == 0 {
		p.Limit = PlanLimitDefault
	}
	if p.Limit < PlanLimitMin {
		p.Limit = PlanLimitMin
	}
	if p.Limit > PlanLimitMax {
		p.Limit = PlanLimitMax
	}
}
