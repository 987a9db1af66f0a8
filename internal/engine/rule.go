package engine

import (
	"github.com/expr-lang/expr"
	"github.com/rs/zerolog/log"

	"github.com/usefloww/floww/internal/core"
)

// RuleMatches reports whether a rule applies to the observed action name
// and parameter bag. All gates must pass: the action gate (nil action is
// a wildcard, otherwise case-sensitive exact match), the parameter gate
// and the optional expression gate.
//
// The parameter gate fails closed: every constrained parameter must be
// present in the bag. A DENY rule scoped to a parameter cannot be
// bypassed by omitting that parameter, and an ALLOW rule scoped to a
// parameter cannot over-grant when the parameter is absent.
func RuleMatches(rule core.PolicyRule, action string, parameters map[string]any) (bool, error) {
	if rule.Action != nil && *rule.Action != action {
		return false, nil
	}

	for name, constraint := range rule.ParameterConstraints {
		value, ok := parameters[name]
		if !ok {
			return false, nil
		}
		matched, err := ConstraintMatches(constraint, value)
		if err != nil {
			return false, err
		}
		if !matched {
			return false, nil
		}
	}

	if rule.CompiledExpr != nil {
		out, err := expr.Run(rule.CompiledExpr, exprEnv(action, parameters))
		if err != nil {
			log.Warn().Err(err).Msgf("error evaluating rule expression '%s'", rule.Expr)
			return false, nil
		}
		b, bOk := out.(bool)
		if !bOk || !b {
			return false, nil
		}
	}

	return true, nil
}

func exprEnv(action string, parameters map[string]any) map[string]any {
	if parameters == nil {
		parameters = map[string]any{}
	}
	return map[string]any{
		"action":     action,
		"parameters": parameters,
	}
}
