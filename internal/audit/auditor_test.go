package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/usefloww/floww/internal/core"
)

func TestInMemoryAuditor(t *testing.T) {
	a := NewInMemoryAuditor()

	for i := 0; i < 5; i++ {
		if err := a.Log(core.AuditEntry{
			ID:         fmt.Sprintf("req-%d", i),
			Action:     "policy.evaluate",
			WorkflowID: "wf-1",
		}); err != nil {
			t.Fatalf("Log() error: %v", err)
		}
	}

	recent, err := a.GetRecent(3)
	if err != nil {
		t.Fatalf("GetRecent() error: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("GetRecent(3) = %d entries", len(recent))
	}
	// most recent entries, oldest first
	if recent[0].ID != "req-2" || recent[2].ID != "req-4" {
		t.Errorf("GetRecent() order = %q..%q, want req-2..req-4", recent[0].ID, recent[2].ID)
	}

	found, err := a.Find(func(e core.AuditEntry) bool {
		return e.ID == "req-1"
	}, 10)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(found) != 1 || found[0].ID != "req-1" {
		t.Errorf("Find() = %+v, want single req-1", found)
	}
}

func TestFileAuditor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	a, err := NewFileAuditor(path)
	if err != nil {
		t.Fatalf("NewFileAuditor() error: %v", err)
	}

	entries := []core.AuditEntry{
		{ID: "req-1", Action: "policy.evaluate", Decision: core.DecisionAllowed},
		{ID: "req-2", Action: "policy.evaluate", Decision: core.DecisionDenied},
	}
	for _, e := range entries {
		if err := a.Log(e); err != nil {
			t.Fatalf("Log() error: %v", err)
		}
	}

	recent, err := a.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent() error: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("GetRecent() = %d entries, want 2", len(recent))
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// one JSON object per line on disk
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e core.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if e.ID != entries[lines].ID {
			t.Errorf("line %d id = %q, want %q", lines, e.ID, entries[lines].ID)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("audit log has %d lines, want 2", lines)
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		auditType string
		path      string
		wantErr   bool
	}{
		{name: "Disabled Yields Noop", enabled: false},
		{name: "Default Type Is Memory", enabled: true},
		{name: "Memory", enabled: true, auditType: "memory"},
		{name: "File Without Path", enabled: true, auditType: "file", wantErr: true},
		{name: "Unknown Type", enabled: true, auditType: "syslog", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Build(tt.enabled, tt.auditType, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Build() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if a == nil {
				t.Errorf("Build() = nil auditor")
			}
		})
	}
}
