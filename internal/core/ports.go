package core

import (
	"context"
	"errors"
)

// ErrGrantNotFound is returned by stores when a grant id does not exist.
// "Grant exists with no rules" is a nil rules slice with a nil error.
var ErrGrantNotFound = errors.New("grant not found")

// RecordStore is the persistence boundary for grants, provider default
// rules and the containment hierarchy. Rule arrays are replaced as whole
// values; writing an empty array is normalized to "no rules".
type RecordStore interface {
	// GetGrantRules returns the rules stored on a grant.
	// It returns ErrGrantNotFound if the grant id does not exist.
	GetGrantRules(ctx context.Context, grantID string) ([]PolicyRule, error)

	// SetGrantRules replaces the grant's rule array and returns the stored rules.
	SetGrantRules(ctx context.Context, grantID string, rules []PolicyRule) ([]PolicyRule, error)

	// GetProviderDefaultRules returns the provider's default rules,
	// or an empty slice if the provider has none.
	GetProviderDefaultRules(ctx context.Context, providerID string) ([]PolicyRule, error)

	// SetProviderDefaultRules replaces the provider's default rule array.
	SetProviderDefaultRules(ctx context.Context, providerID string, rules []PolicyRule) ([]PolicyRule, error)

	// FindGrant looks up the grant scoped to exactly (scopeID, providerID).
	// It returns nil (no error) when no such grant exists.
	FindGrant(ctx context.Context, scopeID, providerID string) (*Grant, error)

	// GetParent returns the id of the scope's containing folder,
	// or "" when the scope is unknown or the root is reached.
	GetParent(ctx context.Context, scopeID string) (string, error)
}

// GrantResolver finds the most specific applicable grant for a
// principal against a resource by walking the containment hierarchy
// from most specific to least specific.
type GrantResolver interface {
	// Resolve returns nil (no error) when no grant applies at any level.
	Resolve(ctx context.Context, principalID, resourceID string) (*Grant, error)
}
