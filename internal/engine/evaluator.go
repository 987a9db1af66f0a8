package engine

import (
	"fmt"

	"github.com/usefloww/floww/internal/core"
)

// ImplicitAllowReason is the reason text when no rule in the chain matched.
// Absence of any rule means unrestricted access.
const ImplicitAllowReason = "No matching rule (implicit allow)"

// Evaluate walks the chain top to bottom and returns the first matching
// rule's decision, or an implicit allow when nothing matches. It is a
// pure function of its inputs: identical inputs always produce an
// identical result.
//
// The only error path is a malformed pattern constraint, which is a
// configuration error in the stored rules (see ConstraintMatches).
func Evaluate(chain core.PolicyRuleChain, action string, parameters map[string]any) (*core.PolicyEvaluationResult, error) {
	if parameters == nil {
		parameters = map[string]any{}
	}

	for i := range chain.Rules {
		rule := chain.Rules[i]

		matched, err := RuleMatches(rule.PolicyRule, action, parameters)
		if err != nil {
			return nil, fmt.Errorf("evaluating rule #%d: %w", i, err)
		}
		if !matched {
			continue
		}

		decision := core.DecisionDenied
		if rule.Effect == core.EffectAllow {
			decision = core.DecisionAllowed
		}

		reason := rule.Description
		if reason == "" {
			reason = fmt.Sprintf("%s %s (%s)", rule.Effect, rule.ActionOrWildcard(), rule.Source)
		}

		return &core.PolicyEvaluationResult{
			Decision:    decision,
			MatchedRule: &rule,
			Reason:      reason,
		}, nil
	}

	return &core.PolicyEvaluationResult{
		Decision: core.DecisionAllowed,
		Reason:   ImplicitAllowReason,
	}, nil
}
