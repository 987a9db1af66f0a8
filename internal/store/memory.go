package store

import (
	"context"
	"sync"

	"github.com/usefloww/floww/internal/core"
)

var _ core.RecordStore = (*Memory)(nil)

type scopeKey struct {
	scope    string
	provider string
}

// Memory is an in-memory RecordStore. Rule arrays are replaced as whole
// values under the lock, so concurrent evaluations either see the old or
// the new array, never a partial write.
type Memory struct {
	mu sync.RWMutex

	grants  map[string]*core.Grant
	byScope map[scopeKey]string // (scope, provider) -> grant id

	providerDefaults map[string][]core.PolicyRule

	parents map[string]string // scope -> containing folder
}

func NewMemory() *Memory {
	return &Memory{
		grants:           make(map[string]*core.Grant),
		byScope:          make(map[scopeKey]string),
		providerDefaults: make(map[string][]core.PolicyRule),
		parents:          make(map[string]string),
	}
}

// PutGrant registers a grant record. Empty rule arrays normalize to nil.
func (s *Memory) PutGrant(_ context.Context, grant core.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant.Rules = normalize(grant.Rules)
	s.grants[grant.ID] = &grant
	s.byScope[scopeKey{scope: grant.Scope, provider: grant.Provider}] = grant.ID
	return nil
}

// SetParent records a containment edge (workflow -> folder, or folder ->
// parent folder). An empty parent marks the scope as a root.
func (s *Memory) SetParent(_ context.Context, scopeID, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID == "" {
		delete(s.parents, scopeID)
		return nil
	}
	s.parents[scopeID] = parentID
	return nil
}

func (s *Memory) GetGrantRules(_ context.Context, grantID string) ([]core.PolicyRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.grants[grantID]
	if !ok {
		return nil, core.ErrGrantNotFound
	}
	return cloneRules(grant.Rules), nil
}

func (s *Memory) SetGrantRules(_ context.Context, grantID string, rules []core.PolicyRule) ([]core.PolicyRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[grantID]
	if !ok {
		return nil, core.ErrGrantNotFound
	}
	grant.Rules = normalize(cloneRules(rules))
	return cloneRules(grant.Rules), nil
}

func (s *Memory) GetProviderDefaultRules(_ context.Context, providerID string) ([]core.PolicyRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, ok := s.providerDefaults[providerID]
	if !ok {
		return []core.PolicyRule{}, nil
	}
	return cloneRules(rules), nil
}

func (s *Memory) SetProviderDefaultRules(_ context.Context, providerID string, rules []core.PolicyRule) ([]core.PolicyRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := normalize(cloneRules(rules))
	if normalized == nil {
		delete(s.providerDefaults, providerID)
		return nil, nil
	}
	s.providerDefaults[providerID] = normalized
	return cloneRules(normalized), nil
}

func (s *Memory) FindGrant(_ context.Context, scopeID, providerID string) (*core.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byScope[scopeKey{scope: scopeID, provider: providerID}]
	if !ok {
		return nil, nil
	}
	grant := *s.grants[id]
	grant.Rules = cloneRules(grant.Rules)
	return &grant, nil
}

func (s *Memory) GetParent(_ context.Context, scopeID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.parents[scopeID], nil
}

// normalize maps empty arrays to nil so that "no rules" has a single
// representation on the read side.
func normalize(rules []core.PolicyRule) []core.PolicyRule {
	if len(rules) == 0 {
		return nil
	}
	return rules
}

func cloneRules(rules []core.PolicyRule) []core.PolicyRule {
	if rules == nil {
		return nil
	}
	out := make([]core.PolicyRule, len(rules))
	copy(out, rules)
	return out
}
