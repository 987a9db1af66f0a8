package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/usefloww/floww/internal/core"
	"github.com/usefloww/floww/internal/validation"
)

type Config struct {
	// AdminKey is the HMAC signing key for admin session tokens.
	AdminKey string `yaml:"admin_key"`

	Storage StorageConfig `yaml:"storage"`
	Audit   AuditConfig   `yaml:"audit"`

	// Seed data applied to the store on startup.
	Providers []ProviderSeed `yaml:"providers"`
	Folders   []FolderSeed   `yaml:"folders"`
	Workflows []WorkflowSeed `yaml:"workflows"`
	Grants    []GrantSeed    `yaml:"grants"`
}

// StorageConfig selects the record store backend.
type StorageConfig struct {
	Type   string         `yaml:"type"`    // e.g., "memory", "file"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// AuditConfig holds configuration for decision auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

// ProviderSeed declares a provider and its default rules, applied to all
// workflows lacking a more specific grant rule.
type ProviderSeed struct {
	ID           string            `yaml:"id"`
	DefaultRules []core.PolicyRule `yaml:"default_rules"`
}

// FolderSeed declares one node of the containment hierarchy.
type FolderSeed struct {
	ID     string `yaml:"id"`
	Parent string `yaml:"parent"`
}

// WorkflowSeed places a workflow inside a folder.
type WorkflowSeed struct {
	ID     string `yaml:"id"`
	Folder string `yaml:"folder"`
}

// GrantSeed links a scope (workflow or folder) to a provider with an
// optional rules array.
type GrantSeed struct {
	ID       string            `yaml:"id"`
	Scope    string            `yaml:"scope"`
	Provider string            `yaml:"provider"`
	Rules    []core.PolicyRule `yaml:"rules"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	validProviders := make(map[string]struct{})
	for idx := range c.Providers {
		p := &c.Providers[idx]
		if p.ID == "" {
			return fmt.Errorf("provider at index %d has empty id", idx)
		}
		if _, exists := validProviders[p.ID]; exists {
			return fmt.Errorf("provider id '%s' is not unique", p.ID)
		}
		validProviders[p.ID] = struct{}{}

		rules, err := validation.ValidateRules(p.DefaultRules)
		if err != nil {
			return fmt.Errorf("validating default rules of provider '%s': %w", p.ID, err)
		}
		p.DefaultRules = rules
	}

	validScopes := make(map[string]struct{})
	for idx, f := range c.Folders {
		if f.ID == "" {
			return fmt.Errorf("folder at index %d has empty id", idx)
		}
		if _, exists := validScopes[f.ID]; exists {
			return fmt.Errorf("folder id '%s' is not unique", f.ID)
		}
		validScopes[f.ID] = struct{}{}
	}
	for _, f := range c.Folders {
		if f.Parent == "" {
			continue
		}
		if _, known := validScopes[f.Parent]; !known {
			return fmt.Errorf("folder '%s' references unknown parent '%s'", f.ID, f.Parent)
		}
	}

	for idx, w := range c.Workflows {
		if w.ID == "" {
			return fmt.Errorf("workflow at index %d has empty id", idx)
		}
		if _, exists := validScopes[w.ID]; exists {
			return fmt.Errorf("workflow id '%s' collides with another scope", w.ID)
		}
		validScopes[w.ID] = struct{}{}

		if w.Folder != "" {
			if _, known := validScopes[w.Folder]; !known {
				return fmt.Errorf("workflow '%s' references unknown folder '%s'", w.ID, w.Folder)
			}
		}
	}

	seenGrants := make(map[string]struct{})
	for idx := range c.Grants {
		g := &c.Grants[idx]
		if g.ID == "" {
			return fmt.Errorf("grant at index %d has empty id", idx)
		}
		if _, exists := seenGrants[g.ID]; exists {
			return fmt.Errorf("grant id '%s' is not unique", g.ID)
		}
		seenGrants[g.ID] = struct{}{}

		if g.Scope == "" {
			return fmt.Errorf("grant '%s' missing scope", g.ID)
		}
		if _, known := validScopes[g.Scope]; !known {
			return fmt.Errorf("grant '%s' references unknown scope '%s'", g.ID, g.Scope)
		}
		if _, known := validProviders[g.Provider]; !known {
			return fmt.Errorf("grant '%s' references unknown provider '%s'", g.ID, g.Provider)
		}

		rules, err := validation.ValidateRules(g.Rules)
		if err != nil {
			return fmt.Errorf("validating rules of grant '%s': %w", g.ID, err)
		}
		g.Rules = rules
	}

	return nil
}
