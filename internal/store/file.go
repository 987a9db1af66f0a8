package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"

	"github.com/usefloww/floww/internal/core"
	"github.com/usefloww/floww/internal/validation"
)

var _ core.RecordStore = (*File)(nil)

// FileOptions configures the file-backed store.
type FileOptions struct {
	// Path is the location of the JSON snapshot file.
	Path string `mapstructure:"path"`
}

// DecodeFileOptions decodes the raw options block from the config file.
func DecodeFileOptions(raw map[string]any) (FileOptions, error) {
	var opts FileOptions
	if err := mapstructure.Decode(raw, &opts); err != nil {
		return opts, fmt.Errorf("decoding file storage options: %w", err)
	}
	if opts.Path == "" {
		return opts, fmt.Errorf("file storage requires a 'path'")
	}
	return opts, nil
}

// File is a Memory store that persists a JSON snapshot of all records
// after every write. Writes replace the snapshot atomically (write to a
// temp file, then rename), so a crash never leaves a half-written file.
type File struct {
	*Memory
	path string
}

type snapshot struct {
	Grants           []core.Grant                 `json:"grants"`
	ProviderDefaults map[string][]core.PolicyRule `json:"provider_defaults"`
	Parents          map[string]string            `json:"parents"`
}

func NewFile(opts FileOptions) (*File, error) {
	f := &File{
		Memory: NewMemory(),
		path:   opts.Path,
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // fresh store
		}
		return fmt.Errorf("reading store snapshot '%s': %w", f.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing store snapshot '%s': %w", f.path, err)
	}

	ctx := context.Background()
	for _, grant := range snap.Grants {
		// re-validate to recompile expressions, which are not serialized
		rules, err := validation.ValidateRules(grant.Rules)
		if err != nil {
			return fmt.Errorf("validating rules of stored grant '%s': %w", grant.ID, err)
		}
		grant.Rules = rules
		_ = f.Memory.PutGrant(ctx, grant)
	}
	for providerID, rules := range snap.ProviderDefaults {
		validated, err := validation.ValidateRules(rules)
		if err != nil {
			return fmt.Errorf("validating stored default rules of provider '%s': %w", providerID, err)
		}
		if _, err := f.Memory.SetProviderDefaultRules(ctx, providerID, validated); err != nil {
			return err
		}
	}
	for scope, parent := range snap.Parents {
		_ = f.Memory.SetParent(ctx, scope, parent)
	}

	return nil
}

func (f *File) persist() error {
	f.Memory.mu.RLock()
	snap := snapshot{
		ProviderDefaults: make(map[string][]core.PolicyRule, len(f.Memory.providerDefaults)),
		Parents:          make(map[string]string, len(f.Memory.parents)),
	}
	for _, grant := range f.Memory.grants {
		snap.Grants = append(snap.Grants, *grant)
	}
	for providerID, rules := range f.Memory.providerDefaults {
		snap.ProviderDefaults[providerID] = rules
	}
	for scope, parent := range f.Memory.parents {
		snap.Parents[scope] = parent
	}
	f.Memory.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing store snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing store snapshot: %w", err)
	}
	return nil
}

func (f *File) PutGrant(ctx context.Context, grant core.Grant) error {
	if err := f.Memory.PutGrant(ctx, grant); err != nil {
		return err
	}
	return f.persist()
}

func (f *File) SetParent(ctx context.Context, scopeID, parentID string) error {
	if err := f.Memory.SetParent(ctx, scopeID, parentID); err != nil {
		return err
	}
	return f.persist()
}

func (f *File) SetGrantRules(ctx context.Context, grantID string, rules []core.PolicyRule) ([]core.PolicyRule, error) {
	stored, err := f.Memory.SetGrantRules(ctx, grantID, rules)
	if err != nil {
		return nil, err
	}
	return stored, f.persist()
}

func (f *File) SetProviderDefaultRules(ctx context.Context, providerID string, rules []core.PolicyRule) ([]core.PolicyRule, error) {
	stored, err := f.Memory.SetProviderDefaultRules(ctx, providerID, rules)
	if err != nil {
		return nil, err
	}
	return stored, f.persist()
}
