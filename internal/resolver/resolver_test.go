package resolver

import (
	"context"
	"testing"

	"github.com/usefloww/floww/internal/core"
	"github.com/usefloww/floww/internal/store"
)

func seed(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	// hierarchy: wf-leaf -> folder-team -> folder-org
	for scope, parent := range map[string]string{
		"wf-leaf":     "folder-team",
		"folder-team": "folder-org",
	} {
		if err := mem.SetParent(ctx, scope, parent); err != nil {
			t.Fatalf("SetParent() error: %v", err)
		}
	}

	grants := []core.Grant{
		{ID: "grant-leaf", Scope: "wf-leaf", Provider: "github"},
		{ID: "grant-team", Scope: "folder-team", Provider: "github"},
		{ID: "grant-org-slack", Scope: "folder-org", Provider: "slack"},
	}
	for _, g := range grants {
		if err := mem.PutGrant(ctx, g); err != nil {
			t.Fatalf("PutGrant() error: %v", err)
		}
	}
	return mem
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		workflow string
		provider string
		wantID   string // "" means no grant
	}{
		{
			name:     "Exact Scope Wins Over Ancestor",
			workflow: "wf-leaf",
			provider: "github",
			wantID:   "grant-leaf",
		},
		{
			name:     "Parent Folder Grant",
			workflow: "folder-team",
			provider: "github",
			wantID:   "grant-team",
		},
		{
			name:     "Ancestor Grant Through Two Levels",
			workflow: "wf-leaf",
			provider: "slack",
			wantID:   "grant-org-slack",
		},
		{
			name:     "No Grant Anywhere",
			workflow: "wf-leaf",
			provider: "aws",
			wantID:   "",
		},
		{
			name:     "Unknown Workflow",
			workflow: "wf-unknown",
			provider: "github",
			wantID:   "",
		},
	}

	mem := seed(t)
	r := New(mem)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grant, err := r.Resolve(context.Background(), tt.workflow, tt.provider)
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}

			if tt.wantID == "" {
				if grant != nil {
					t.Errorf("Resolve() = %+v, want nil", grant)
				}
				return
			}
			if grant == nil {
				t.Fatalf("Resolve() = nil, want grant %q", tt.wantID)
			}
			if grant.ID != tt.wantID {
				t.Errorf("Resolve() grant = %q, want %q", grant.ID, tt.wantID)
			}
		})
	}
}

func TestResolver_CycleDetection(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	// corrupted hierarchy: a <-> b
	if err := mem.SetParent(ctx, "folder-a", "folder-b"); err != nil {
		t.Fatalf("SetParent() error: %v", err)
	}
	if err := mem.SetParent(ctx, "folder-b", "folder-a"); err != nil {
		t.Fatalf("SetParent() error: %v", err)
	}

	r := New(mem)
	if _, err := r.Resolve(ctx, "folder-a", "github"); err == nil {
		t.Errorf("Resolve() expected cycle error, got nil")
	}
}
