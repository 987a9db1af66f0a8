package engine

import (
	"strings"
	"testing"

	"github.com/usefloww/floww/internal/core"
)

func TestTrace(t *testing.T) {
	chain := core.PolicyRuleChain{
		Rules: []core.PolicyRuleWithSource{
			{
				PolicyRule: core.PolicyRule{
					Effect: core.EffectDeny,
					Action: strPtr("deleteRepo"),
				},
				Source: core.SourceGrant,
			},
			{
				PolicyRule: core.PolicyRule{
					Effect: core.EffectAllow,
					ParameterConstraints: map[string]core.ParameterConstraint{
						"visibility": {Eq: "private"},
					},
				},
				Source: core.SourceDefault,
			},
			{
				PolicyRule: core.PolicyRule{
					Effect: core.EffectAllow,
				},
				Source: core.SourceDefault,
			},
		},
	}

	trace := Trace(chain, "createRepo", map[string]any{"visibility": "private"})

	// every rule is checked, even those after the first match
	if len(trace.RuleResults) != len(chain.Rules) {
		t.Fatalf("Trace() recorded %d rule results, want %d", len(trace.RuleResults), len(chain.Rules))
	}

	if trace.MatchedIndex != 1 {
		t.Errorf("Trace() matched index = %d, want 1", trace.MatchedIndex)
	}
	if trace.Decision != core.DecisionAllowed {
		t.Errorf("Trace() decision = %v, want %v", trace.Decision, core.DecisionAllowed)
	}

	// rule 0 fails on the action gate with a mismatch reason
	first := trace.RuleResults[0]
	if first.Matched {
		t.Errorf("Trace() rule 0 matched, want no match")
	}
	if len(first.CheckResults) == 0 || !strings.Contains(first.CheckResults[0].Reason, "action mismatch") {
		t.Errorf("Trace() rule 0 checks = %+v, want action mismatch reason", first.CheckResults)
	}

	// rule 2 matches too but the earlier match decides
	if !trace.RuleResults[2].Matched {
		t.Errorf("Trace() rule 2 matched = false, want true")
	}
}

func TestTrace_MissingParameter(t *testing.T) {
	chain := core.PolicyRuleChain{
		Rules: []core.PolicyRuleWithSource{
			{
				PolicyRule: core.PolicyRule{
					Effect: core.EffectDeny,
					ParameterConstraints: map[string]core.ParameterConstraint{
						"channel": {Eq: "general"},
					},
				},
				Source: core.SourceGrant,
			},
		},
	}

	trace := Trace(chain, "sendMessage", nil)

	if trace.MatchedIndex != -1 {
		t.Fatalf("Trace() matched index = %d, want -1", trace.MatchedIndex)
	}
	if trace.Reason != ImplicitAllowReason {
		t.Errorf("Trace() reason = %q, want %q", trace.Reason, ImplicitAllowReason)
	}

	checks := trace.RuleResults[0].CheckResults
	var found bool
	for _, c := range checks {
		if strings.Contains(c.Reason, "required parameter 'channel' missing") {
			found = true
		}
	}
	if !found {
		t.Errorf("Trace() checks = %+v, want missing-parameter reason", checks)
	}
}

func TestTrace_MalformedPatternBecomesFailedCheck(t *testing.T) {
	chain := core.PolicyRuleChain{
		Rules: []core.PolicyRuleWithSource{
			{
				PolicyRule: core.PolicyRule{
					Effect: core.EffectAllow,
					ParameterConstraints: map[string]core.ParameterConstraint{
						"name": {Pattern: "["},
					},
				},
				Source: core.SourceDefault,
			},
		},
	}

	trace := Trace(chain, "createRepo", map[string]any{"name": "x"})

	if trace.RuleResults[0].Matched {
		t.Errorf("Trace() rule matched despite malformed pattern")
	}

	checks := trace.RuleResults[0].CheckResults
	var found bool
	for _, c := range checks {
		if strings.Contains(c.Reason, "constraint error") {
			found = true
		}
	}
	if !found {
		t.Errorf("Trace() checks = %+v, want constraint error reason", checks)
	}
}

func TestTrace_DeterministicCheckOrder(t *testing.T) {
	chain := core.PolicyRuleChain{
		Rules: []core.PolicyRuleWithSource{
			{
				PolicyRule: core.PolicyRule{
					Effect: core.EffectAllow,
					ParameterConstraints: map[string]core.ParameterConstraint{
						"zeta":  {Eq: "z"},
						"alpha": {Eq: "a"},
						"mid":   {Eq: "m"},
					},
				},
				Source: core.SourceDefault,
			},
		},
	}
	params := map[string]any{"zeta": "z", "alpha": "a", "mid": "m"}

	first := Trace(chain, "x", params)
	for i := 0; i < 20; i++ {
		got := Trace(chain, "x", params)
		for j, check := range got.RuleResults[0].CheckResults {
			if check.Expression != first.RuleResults[0].CheckResults[j].Expression {
				t.Fatalf("Trace() check order diverged on run %d at position %d", i, j)
			}
		}
	}
}
