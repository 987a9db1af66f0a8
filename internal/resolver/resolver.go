// Package resolver finds the most specific applicable grant for a
// workflow against a provider by walking the folder hierarchy.
package resolver

import (
	"context"
	"fmt"

	"github.com/usefloww/floww/internal/core"
)

var _ core.GrantResolver = (*Resolver)(nil)

// Resolver walks the containment hierarchy from most specific to least
// specific: the workflow itself, then its folder, then each ancestor
// folder up to the root. The first grant found wins. Each resolution is
// a fresh traversal; nothing is cached.
type Resolver struct {
	store core.RecordStore
}

func New(store core.RecordStore) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Resolve(ctx context.Context, principalID, resourceID string) (*core.Grant, error) {
	seen := make(map[string]struct{})

	scope := principalID
	for scope != "" {
		// the hierarchy is a tree, but stored parent edges are data;
		// refuse to loop forever on a corrupted hierarchy
		if _, ok := seen[scope]; ok {
			return nil, fmt.Errorf("hierarchy cycle detected at scope '%s'", scope)
		}
		seen[scope] = struct{}{}

		grant, err := r.store.FindGrant(ctx, scope, resourceID)
		if err != nil {
			return nil, fmt.Errorf("looking up grant for scope '%s': %w", scope, err)
		}
		if grant != nil {
			return grant, nil
		}

		parent, err := r.store.GetParent(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("looking up parent of scope '%s': %w", scope, err)
		}
		scope = parent
	}

	return nil, nil
}
