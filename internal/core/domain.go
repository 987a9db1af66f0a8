package core

import (
	"github.com/expr-lang/expr/vm"
)

// Effect is the outcome a matching rule prescribes.
type Effect string

const (
	EffectAllow Effect = "ALLOW"
	EffectDeny  Effect = "DENY"
)

func (e Effect) IsValid() bool {
	switch e {
	case EffectAllow, EffectDeny:
		return true
	default:
		return false
	}
}

// RuleSource tags where a rule in a chain came from.
// It is provenance metadata only and never affects matching.
type RuleSource string

const (
	SourceGrant   RuleSource = "grant"
	SourceDefault RuleSource = "default"
)

// Decision is the final outcome of a policy evaluation.
type Decision string

const (
	DecisionAllowed Decision = "ALLOWED"
	DecisionDenied  Decision = "DENIED"
)

// PolicyRule is one line of the firewall.
type PolicyRule struct {
	// Effect is applied when the rule matches (ALLOW or DENY).
	Effect Effect `yaml:"effect" json:"effect"`

	// Action is the action name this rule applies to.
	// nil means wildcard: the rule matches every action.
	Action *string `yaml:"action" json:"action"`

	// ParameterConstraints maps parameter names to constraints.
	// Every listed parameter must be present in the call's parameter bag;
	// a missing required parameter means the rule does NOT match.
	ParameterConstraints map[string]ParameterConstraint `yaml:"parameter_constraints,omitempty" json:"parameterConstraints,omitempty"`

	// Description is used for the default reason text and display.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Expr is an optional expression for more complex matching logic,
	// evaluated against the action name and parameter bag.
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`

	// CompiledExpr holds the pre-compiled form of Expr for efficient evaluation.
	CompiledExpr *vm.Program `yaml:"-" json:"-"`
}

// ActionOrWildcard returns the action name, or "*" for wildcard rules.
func (r PolicyRule) ActionOrWildcard() string {
	if r.Action == nil {
		return "*"
	}
	return *r.Action
}

// PolicyRuleWithSource is a PolicyRule annotated with its chain provenance.
type PolicyRuleWithSource struct {
	PolicyRule `yaml:",inline"`

	Source RuleSource `yaml:"source" json:"source"`
}

// PolicyRuleChain is the ordered rule list for one (principal, resource)
// pair. Index 0 is highest precedence; grant rules always precede
// default rules. Chains are ephemeral and rebuilt per evaluation.
type PolicyRuleChain struct {
	Rules []PolicyRuleWithSource `yaml:"rules" json:"rules"`
}

// PolicyEvaluationResult is the outcome of evaluating a chain.
type PolicyEvaluationResult struct {
	Decision Decision `json:"decision"`

	// MatchedRule is the winning rule. It is nil only on the
	// implicit-allow path where no rule matched.
	MatchedRule *PolicyRuleWithSource `json:"matchedRule,omitempty"`

	Reason string `json:"reason"`
}

// Grant is a stored authorization record linking a scope (a workflow or
// one of its ancestor folders) to a provider, carrying an optional rules array.
type Grant struct {
	ID       string       `yaml:"id" json:"id"`
	Scope    string       `yaml:"scope" json:"scope"`
	Provider string       `yaml:"provider" json:"provider"`
	Rules    []PolicyRule `yaml:"rules" json:"rules"`
}
