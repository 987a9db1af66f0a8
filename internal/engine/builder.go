package engine

import (
	"context"
	"fmt"

	"github.com/usefloww/floww/internal/core"
)

// Builder assembles the ordered rule chain for a (principal, resource)
// pair: grant rules first (highest precedence), then the provider's
// default rules as fallback. Chains are built fresh from current storage
// state on every call; a rule edit takes effect on the next evaluation.
type Builder struct {
	store    core.RecordStore
	resolver core.GrantResolver
}

func NewBuilder(store core.RecordStore, resolver core.GrantResolver) *Builder {
	return &Builder{
		store:    store,
		resolver: resolver,
	}
}

// Build returns the chain for the given workflow and provider.
// "No grant found" contributes zero grant rules, it is not a failure.
func (b *Builder) Build(ctx context.Context, workflowID, providerID string) (core.PolicyRuleChain, error) {
	var chain core.PolicyRuleChain

	grant, err := b.resolver.Resolve(ctx, workflowID, providerID)
	if err != nil {
		return chain, fmt.Errorf("resolving grant for '%s' on '%s': %w", workflowID, providerID, err)
	}
	if grant != nil {
		for _, rule := range grant.Rules {
			chain.Rules = append(chain.Rules, core.PolicyRuleWithSource{
				PolicyRule: rule,
				Source:     core.SourceGrant,
			})
		}
	}

	defaults, err := b.store.GetProviderDefaultRules(ctx, providerID)
	if err != nil {
		return chain, fmt.Errorf("loading default rules for provider '%s': %w", providerID, err)
	}
	for _, rule := range defaults {
		chain.Rules = append(chain.Rules, core.PolicyRuleWithSource{
			PolicyRule: rule,
			Source:     core.SourceDefault,
		})
	}

	return chain, nil
}

// BuildAll builds one chain per provider, omitting chains with zero
// rules. An omitted chain and an empty chain behave identically under
// the evaluator's implicit-allow rule, so this is purely an optimization
// for deployment-time policy injection.
func (b *Builder) BuildAll(ctx context.Context, workflowID string, providerIDs []string) (map[string]core.PolicyRuleChain, error) {
	chains := make(map[string]core.PolicyRuleChain)
	for _, providerID := range providerIDs {
		chain, err := b.Build(ctx, workflowID, providerID)
		if err != nil {
			return nil, err
		}
		if len(chain.Rules) == 0 {
			continue
		}
		chains[providerID] = chain
	}
	return chains, nil
}
