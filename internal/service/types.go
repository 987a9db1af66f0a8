package service

import "github.com/usefloww/floww/internal/core"

type EvaluateRequest struct {
	// WorkflowID is the principal the action is evaluated for.
	WorkflowID string `json:"workflowId"`

	// ProviderID is the targeted provider.
	ProviderID string `json:"providerId"`

	// Action is the provider action name being attempted.
	Action string `json:"action"`

	// Parameters is the call's parameter bag.
	Parameters map[string]any `json:"parameters"`
}

// Decision is the evaluation result plus the full chain it was derived
// from, so callers can render which rule matched and why.
type Decision struct {
	core.PolicyEvaluationResult

	Chain core.PolicyRuleChain `json:"chain"`
}
