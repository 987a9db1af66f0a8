package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/usefloww/floww/internal/core"
)

const validConfig = `
admin_key: test-signing-key

storage:
  type: memory

audit:
  enabled: true
  type: memory

providers:
  - id: github
    default_rules:
      - effect: ALLOW
  - id: slack

folders:
  - id: folder-org
  - id: folder-team
    parent: folder-org

workflows:
  - id: wf-1
    folder: folder-team

grants:
  - id: grant-1
    scope: folder-team
    provider: github
    rules:
      - effect: DENY
        action: deleteRepo
        description: no repo deletion below this folder
      - effect: ALLOW
        action: sendMessage
        parameter_constraints:
          channel: [general, random]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "floww.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.AdminKey != "test-signing-key" {
		t.Errorf("Load() admin key = %q", cfg.AdminKey)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("Load() storage type = %q, want memory", cfg.Storage.Type)
	}
	if !cfg.Audit.Enabled {
		t.Errorf("Load() audit not enabled")
	}
	if len(cfg.Providers) != 2 || len(cfg.Grants) != 1 {
		t.Fatalf("Load() providers = %d, grants = %d", len(cfg.Providers), len(cfg.Grants))
	}

	rules := cfg.Grants[0].Rules
	if len(rules) != 2 {
		t.Fatalf("Load() grant rules = %d, want 2", len(rules))
	}
	if rules[0].Effect != core.EffectDeny || rules[0].ActionOrWildcard() != "deleteRepo" {
		t.Errorf("Load() rule 0 = %+v", rules[0])
	}
	channel := rules[1].ParameterConstraints["channel"]
	if len(channel.In) != 2 {
		t.Errorf("Load() channel constraint = %+v, want in-list of 2", channel)
	}
}

func TestLoad_FileStorageOptions(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
storage:
  type: file
  path: /var/lib/floww/store.json
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Type != "file" {
		t.Errorf("Load() storage type = %q, want file", cfg.Storage.Type)
	}
	// extra keys of the storage block are captured for the backend
	if got := cfg.Storage.Config["path"]; got != "/var/lib/floww/store.json" {
		t.Errorf("Load() storage path = %v", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name: "Duplicate Provider",
			config: `
providers:
  - id: github
  - id: github
`,
			wantErr: "not unique",
		},
		{
			name: "Grant Unknown Scope",
			config: `
providers:
  - id: github
grants:
  - id: grant-1
    scope: nowhere
    provider: github
`,
			wantErr: "unknown scope",
		},
		{
			name: "Grant Unknown Provider",
			config: `
workflows:
  - id: wf-1
grants:
  - id: grant-1
    scope: wf-1
    provider: nope
`,
			wantErr: "unknown provider",
		},
		{
			name: "Folder Unknown Parent",
			config: `
folders:
  - id: folder-a
    parent: missing
`,
			wantErr: "unknown parent",
		},
		{
			name: "Workflow Unknown Folder",
			config: `
workflows:
  - id: wf-1
    folder: missing
`,
			wantErr: "unknown folder",
		},
		{
			name: "Invalid Rule Effect",
			config: `
providers:
  - id: github
    default_rules:
      - effect: MAYBE
`,
			wantErr: "invalid effect",
		},
		{
			name: "Malformed Rule Pattern",
			config: `
providers:
  - id: github
    default_rules:
      - effect: ALLOW
        parameter_constraints:
          name:
            pattern: "["
`,
			wantErr: "pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.config))
			if err == nil {
				t.Fatalf("Load() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("Load() expected error for missing file, got nil")
	}
}

func TestLoad_CompilesRuleExpressions(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
providers:
  - id: github
    default_rules:
      - effect: ALLOW
        expr: parameters.count < 10
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Providers[0].DefaultRules[0].CompiledExpr == nil {
		t.Errorf("Load() did not compile the rule expression")
	}
}
