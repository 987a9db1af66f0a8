package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usefloww/floww/internal/core"
)

func strPtr(s string) *string {
	return &s
}

func TestMemory_GrantRules(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	if err := mem.PutGrant(ctx, core.Grant{
		ID:       "grant-1",
		Scope:    "wf-1",
		Provider: "github",
	}); err != nil {
		t.Fatalf("PutGrant() error: %v", err)
	}

	rules := []core.PolicyRule{
		{Effect: core.EffectDeny, Action: strPtr("deleteRepo")},
		{Effect: core.EffectAllow},
	}
	stored, err := mem.SetGrantRules(ctx, "grant-1", rules)
	if err != nil {
		t.Fatalf("SetGrantRules() error: %v", err)
	}
	if diff := cmp.Diff(rules, stored); diff != "" {
		t.Errorf("SetGrantRules() mismatch (-want +got):\n%s", diff)
	}

	got, err := mem.GetGrantRules(ctx, "grant-1")
	if err != nil {
		t.Fatalf("GetGrantRules() error: %v", err)
	}
	if diff := cmp.Diff(rules, got); diff != "" {
		t.Errorf("GetGrantRules() mismatch (-want +got):\n%s", diff)
	}

	// order must survive the round-trip
	if got[0].Action == nil || *got[0].Action != "deleteRepo" {
		t.Errorf("GetGrantRules() rule order changed: %+v", got)
	}
}

func TestMemory_GrantNotFound(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	if _, err := mem.GetGrantRules(ctx, "nope"); !errors.Is(err, core.ErrGrantNotFound) {
		t.Errorf("GetGrantRules() error = %v, want ErrGrantNotFound", err)
	}
	if _, err := mem.SetGrantRules(ctx, "nope", nil); !errors.Is(err, core.ErrGrantNotFound) {
		t.Errorf("SetGrantRules() error = %v, want ErrGrantNotFound", err)
	}
}

func TestMemory_EmptyRulesNormalizeToNil(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	if err := mem.PutGrant(ctx, core.Grant{
		ID:       "grant-1",
		Scope:    "wf-1",
		Provider: "github",
		Rules:    []core.PolicyRule{},
	}); err != nil {
		t.Fatalf("PutGrant() error: %v", err)
	}

	got, err := mem.GetGrantRules(ctx, "grant-1")
	if err != nil {
		t.Fatalf("GetGrantRules() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetGrantRules() = %v, want nil for empty rule array", got)
	}
}

func TestMemory_ProviderDefaults(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	// unknown provider reads as empty, not as an error
	got, err := mem.GetProviderDefaultRules(ctx, "github")
	if err != nil {
		t.Fatalf("GetProviderDefaultRules() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetProviderDefaultRules() = %v, want empty", got)
	}

	rules := []core.PolicyRule{{Effect: core.EffectAllow}}
	if _, err := mem.SetProviderDefaultRules(ctx, "github", rules); err != nil {
		t.Fatalf("SetProviderDefaultRules() error: %v", err)
	}

	got, err = mem.GetProviderDefaultRules(ctx, "github")
	if err != nil {
		t.Fatalf("GetProviderDefaultRules() error: %v", err)
	}
	if diff := cmp.Diff(rules, got); diff != "" {
		t.Errorf("GetProviderDefaultRules() mismatch (-want +got):\n%s", diff)
	}

	// setting an empty array clears the record
	if _, err := mem.SetProviderDefaultRules(ctx, "github", nil); err != nil {
		t.Fatalf("SetProviderDefaultRules() error: %v", err)
	}
	got, err = mem.GetProviderDefaultRules(ctx, "github")
	if err != nil {
		t.Fatalf("GetProviderDefaultRules() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetProviderDefaultRules() after clear = %v, want empty", got)
	}
}

func TestMemory_FindGrant(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	if err := mem.PutGrant(ctx, core.Grant{
		ID:       "grant-1",
		Scope:    "folder-a",
		Provider: "github",
	}); err != nil {
		t.Fatalf("PutGrant() error: %v", err)
	}

	grant, err := mem.FindGrant(ctx, "folder-a", "github")
	if err != nil {
		t.Fatalf("FindGrant() error: %v", err)
	}
	if grant == nil || grant.ID != "grant-1" {
		t.Errorf("FindGrant() = %+v, want grant-1", grant)
	}

	// same scope, different provider
	grant, err = mem.FindGrant(ctx, "folder-a", "slack")
	if err != nil {
		t.Fatalf("FindGrant() error: %v", err)
	}
	if grant != nil {
		t.Errorf("FindGrant() = %+v, want nil", grant)
	}
}

func TestMemory_Parents(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	if err := mem.SetParent(ctx, "wf-1", "folder-a"); err != nil {
		t.Fatalf("SetParent() error: %v", err)
	}

	parent, err := mem.GetParent(ctx, "wf-1")
	if err != nil {
		t.Fatalf("GetParent() error: %v", err)
	}
	if parent != "folder-a" {
		t.Errorf("GetParent() = %q, want %q", parent, "folder-a")
	}

	// empty parent marks a root
	if err := mem.SetParent(ctx, "wf-1", ""); err != nil {
		t.Fatalf("SetParent() error: %v", err)
	}
	parent, err = mem.GetParent(ctx, "wf-1")
	if err != nil {
		t.Fatalf("GetParent() error: %v", err)
	}
	if parent != "" {
		t.Errorf("GetParent() = %q, want empty", parent)
	}
}
