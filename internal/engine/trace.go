package engine

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"

	"github.com/usefloww/floww/internal/core"
)

// Trace evaluates every rule in the chain (no short-circuit) and records
// per-gate results, so a dry-run UI can render which rule would match
// and why the others do not. The decision is still first-match-wins.
//
// Unlike Evaluate, a malformed pattern does not abort the trace: it is
// reported as a failed check with the compile error as reason, since the
// whole point of a trace is showing the author what is wrong.
func Trace(chain core.PolicyRuleChain, action string, parameters map[string]any) core.EvaluationTrace {
	if parameters == nil {
		parameters = map[string]any{}
	}

	trace := core.EvaluationTrace{
		Action:       action,
		Chain:        chain,
		RuleResults:  make([]core.RuleResult, 0, len(chain.Rules)),
		Decision:     core.DecisionAllowed,
		Reason:       ImplicitAllowReason,
		MatchedIndex: -1,
	}

	for i := range chain.Rules {
		rule := chain.Rules[i]
		result := checkRule(i, rule, action, parameters)
		trace.RuleResults = append(trace.RuleResults, result)

		if result.Matched && trace.MatchedIndex == -1 {
			trace.MatchedIndex = i
			trace.Decision = core.DecisionDenied
			if rule.Effect == core.EffectAllow {
				trace.Decision = core.DecisionAllowed
			}
			trace.Reason = rule.Description
			if trace.Reason == "" {
				trace.Reason = fmt.Sprintf("%s %s (%s)", rule.Effect, rule.ActionOrWildcard(), rule.Source)
			}
		}
	}

	return trace
}

// checkRule evaluates a single rule against the action and parameters,
// recording one CheckResult per gate.
func checkRule(index int, rule core.PolicyRuleWithSource, action string, parameters map[string]any) core.RuleResult {
	result := core.RuleResult{
		Index:       index,
		Source:      rule.Source,
		Description: rule.Description,
		Matched:     true, // fail on any mismatch
	}

	addResult := func(expression string, passed bool, reason string) {
		result.CheckResults = append(result.CheckResults, core.CheckResult{
			Expression: expression,
			Matched:    passed,
			Reason:     reason,
		})
		if !passed {
			result.Matched = false
		}
	}

	if rule.Action == nil {
		addResult("action == * (wildcard)", true, "")
	} else if *rule.Action != action {
		addResult(
			fmt.Sprintf("action == '%s'", *rule.Action),
			false,
			fmt.Sprintf("action mismatch: expected '%s', got '%s'", *rule.Action, action),
		)
	} else {
		addResult(fmt.Sprintf("action == '%s'", *rule.Action), true, "")
	}

	// map iteration order is random; sort for a deterministic trace
	names := make([]string, 0, len(rule.ParameterConstraints))
	for name := range rule.ParameterConstraints {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		constraint := rule.ParameterConstraints[name]
		exprText := describeConstraint(name, constraint)

		value, ok := parameters[name]
		if !ok {
			addResult(exprText, false, fmt.Sprintf("required parameter '%s' missing", name))
			continue
		}

		matched, err := ConstraintMatches(constraint, value)
		switch {
		case err != nil:
			addResult(exprText, false, fmt.Sprintf("constraint error: %v", err))
		case !matched:
			addResult(exprText, false, fmt.Sprintf("value '%v' does not satisfy constraint", value))
		default:
			addResult(exprText, true, "")
		}
	}

	if rule.CompiledExpr != nil {
		out, err := expr.Run(rule.CompiledExpr, exprEnv(action, parameters))
		if err != nil {
			addResult(rule.Expr, false, fmt.Sprintf("error evaluating expression: %v", err))
		} else if b, bOk := out.(bool); !bOk || !b {
			addResult(rule.Expr, false, "expression evaluated to false")
		} else {
			addResult(rule.Expr, true, "")
		}
	}

	return result
}

func describeConstraint(name string, c core.ParameterConstraint) string {
	if c.IsVacuous() {
		return fmt.Sprintf("%s (no constraint)", name)
	}

	var parts []string
	if len(c.In) > 0 {
		parts = append(parts, fmt.Sprintf("%s in %v", name, c.In))
	}
	if len(c.NotIn) > 0 {
		parts = append(parts, fmt.Sprintf("%s not in %v", name, c.NotIn))
	}
	if c.Eq != nil {
		parts = append(parts, fmt.Sprintf("%s == '%v'", name, c.Eq))
	}
	if c.Pattern != "" {
		parts = append(parts, fmt.Sprintf("%s matches /%s/", name, c.Pattern))
	}
	if c.StartsWith != "" {
		parts = append(parts, fmt.Sprintf("%s starts with '%s'", name, c.StartsWith))
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += " and " + p
	}
	return out
}
