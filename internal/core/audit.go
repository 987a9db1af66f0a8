package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "policy.evaluate")
	Action string `json:"action"`

	// WorkflowID identifies the principal the evaluation ran for
	WorkflowID string `json:"workflow_id,omitempty"`
	// ProviderID that was targeted
	ProviderID string `json:"provider_id,omitempty"`

	// ActionName is the provider action that was evaluated
	ActionName string `json:"action_name,omitempty"`
	// Parameters is the parameter bag the action was evaluated with
	Parameters map[string]any `json:"parameters,omitempty"`

	// Decision details
	Decision   Decision   `json:"decision,omitempty"`
	RuleSource RuleSource `json:"rule_source,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
	Close() error
}
