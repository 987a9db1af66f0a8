package validation

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/usefloww/floww/internal/core"
)

// ValidateRules checks a rule array at the write/ingestion boundary and
// returns the rules with expressions pre-compiled. The evaluator assumes
// well-formed input, so every write path must go through here.
func ValidateRules(rules []core.PolicyRule) ([]core.PolicyRule, error) {
	var validRules []core.PolicyRule

	for i, rule := range rules {
		if !rule.Effect.IsValid() {
			return nil, fmt.Errorf("rule #%d: invalid effect '%s' (must be ALLOW or DENY)", i, rule.Effect)
		}

		for name, constraint := range rule.ParameterConstraints {
			if name == "" {
				return nil, fmt.Errorf("rule #%d: constraint with empty parameter name", i)
			}
			if err := constraint.Validate(); err != nil {
				return nil, fmt.Errorf("rule #%d: constraint for parameter '%s': %w", i, name, err)
			}
		}

		if rule.Expr != "" {
			out, err := expr.Compile(rule.Expr, expr.AsBool())
			if err != nil {
				return nil, fmt.Errorf("rule #%d: compiling expr: %w", i, err)
			}
			rule.CompiledExpr = out
		}

		validRules = append(validRules, rule)
	}

	return validRules, nil
}
