package engine

import (
	"testing"

	"github.com/usefloww/floww/internal/core"
)

func TestConstraintMatches(t *testing.T) {
	tests := []struct {
		name       string
		constraint core.ParameterConstraint
		value      any
		want       bool
		wantErr    bool
	}{
		// --- Vacuous ---
		{
			name:       "Empty Constraint Always Passes",
			constraint: core.ParameterConstraint{},
			value:      "anything",
			want:       true,
		},

		// --- In / NotIn ---
		{
			name:       "In - Member",
			constraint: core.ParameterConstraint{In: []any{"dev", "staging"}},
			value:      "staging",
			want:       true,
		},
		{
			name:       "In - Not a Member",
			constraint: core.ParameterConstraint{In: []any{"dev", "staging"}},
			value:      "prod",
			want:       false,
		},
		{
			name:       "NotIn - Member Rejected",
			constraint: core.ParameterConstraint{NotIn: []any{"prod"}},
			value:      "prod",
			want:       false,
		},
		{
			name:       "NotIn - Non-Member Passes",
			constraint: core.ParameterConstraint{NotIn: []any{"prod"}},
			value:      "dev",
			want:       true,
		},

		// --- Eq ---
		{
			name:       "Eq - String Match",
			constraint: core.ParameterConstraint{Eq: "general"},
			value:      "general",
			want:       true,
		},
		{
			name:       "Eq - String Mismatch",
			constraint: core.ParameterConstraint{Eq: "general"},
			value:      "random",
			want:       false,
		},
		{
			name:       "Eq - No Cross-Type Coercion String vs Number",
			constraint: core.ParameterConstraint{Eq: "5"},
			value:      5,
			want:       false,
		},
		{
			name: "Eq - Numeric Types Compare By Value",
			// rules decoded from YAML carry int, request bodies
			// decoded from JSON carry float64
			constraint: core.ParameterConstraint{Eq: 5},
			value:      float64(5),
			want:       true,
		},
		{
			name:       "Eq - Bool",
			constraint: core.ParameterConstraint{Eq: true},
			value:      true,
			want:       true,
		},
		{
			name:       "Eq - Bool Never Equals Number",
			constraint: core.ParameterConstraint{Eq: true},
			value:      1,
			want:       false,
		},

		// --- Pattern ---
		{
			name:       "Pattern - Match",
			constraint: core.ParameterConstraint{Pattern: "^team-[a-z]+$"},
			value:      "team-platform",
			want:       true,
		},
		{
			name:       "Pattern - Unanchored Substring Match",
			constraint: core.ParameterConstraint{Pattern: "platform"},
			value:      "team-platform-eu",
			want:       true,
		},
		{
			name:       "Pattern - Mismatch",
			constraint: core.ParameterConstraint{Pattern: "^team-[a-z]+$"},
			value:      "Team-Platform",
			want:       false,
		},
		{
			name:       "Pattern - Non-String Value Is Stringified",
			constraint: core.ParameterConstraint{Pattern: "^42$"},
			value:      42,
			want:       true,
		},
		{
			name:       "Pattern - Malformed Is an Error",
			constraint: core.ParameterConstraint{Pattern: "["},
			value:      "anything",
			wantErr:    true,
		},

		// --- StartsWith ---
		{
			name:       "StartsWith - Match",
			constraint: core.ParameterConstraint{StartsWith: "arn:aws:"},
			value:      "arn:aws:s3:::bucket",
			want:       true,
		},
		{
			name:       "StartsWith - Mismatch",
			constraint: core.ParameterConstraint{StartsWith: "arn:aws:"},
			value:      "arn:gcp:thing",
			want:       false,
		},

		// --- AND composition ---
		{
			name: "All Sub-Tests Must Pass",
			constraint: core.ParameterConstraint{
				In:         []any{"team-a", "team-b"},
				StartsWith: "team-",
			},
			value: "team-a",
			want:  true,
		},
		{
			name: "One Failing Sub-Test Fails the Constraint",
			constraint: core.ParameterConstraint{
				In:         []any{"team-a", "other"},
				StartsWith: "team-",
			},
			value: "other",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConstraintMatches(tt.constraint, tt.value)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ConstraintMatches() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ConstraintMatches() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ConstraintMatches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScalarEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"Int vs Float64 Same Value", 3, float64(3), true},
		{"Int64 vs Int", int64(7), 7, true},
		{"Different Numbers", 3, float64(4), false},
		{"String vs String", "x", "x", true},
		{"String vs Number", "3", 3, false},
		{"Nil vs Nil", nil, nil, true},
		{"Nil vs String", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scalarEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("scalarEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
