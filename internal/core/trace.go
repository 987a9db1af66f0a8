package core

// EvaluationTrace captures the detailed trace of a policy evaluation.
type EvaluationTrace struct {
	// CorrelationID is the unique identifier for the evaluation request.
	CorrelationID string `json:"correlation_id"`

	WorkflowID string `json:"workflow_id"`
	ProviderID string `json:"provider_id"`
	Action     string `json:"action"`

	// Chain is the full rule chain that was evaluated.
	Chain PolicyRuleChain `json:"chain"`

	// RuleResults contains the result of every rule in the chain.
	RuleResults []RuleResult `json:"rule_results"`

	Decision Decision `json:"decision"`
	Reason   string   `json:"reason"`

	// MatchedIndex is the chain index of the winning rule, -1 on implicit allow.
	MatchedIndex int `json:"matched_index"`
}

// RuleResult captures why a specific rule matched or failed.
type RuleResult struct {
	Index        int           `json:"index"`
	Source       RuleSource    `json:"source"`
	Description  string        `json:"description,omitempty"`
	Matched      bool          `json:"matched"`
	CheckResults []CheckResult `json:"check_results,omitempty"`
}

// CheckResult is the outcome of one gate of a rule.
type CheckResult struct {
	// Expression is a human-readable form of the check, e.g. "channel in [general random]".
	Expression string `json:"expression"`
	Matched    bool   `json:"matched"`
	Reason     string `json:"reason,omitempty"`
}
