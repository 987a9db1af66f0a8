package client

import (
	"context"

	"github.com/usefloww/floww/internal/api"
	"github.com/usefloww/floww/internal/core"
)

// GetGrantRules retrieves the rule array stored on a grant.
func (c *Client) GetGrantRules(ctx context.Context, grantID string) ([]core.PolicyRule, string, error) {
	var rules []core.PolicyRule
	correlation, err := c.get(ctx, c.url().
		setPath(api.GrantRulesRoute).
		setPathParam("id", grantID).
		build(), &rules)
	return rules, correlation, err
}

// SetGrantRules replaces the rule array stored on a grant.
func (c *Client) SetGrantRules(ctx context.Context, grantID string, rules []core.PolicyRule) ([]core.PolicyRule, string, error) {
	var stored []core.PolicyRule
	correlation, err := c.put(ctx, c.url().
		setPath(api.GrantRulesRoute).
		setPathParam("id", grantID).
		build(), rules, &stored)
	return stored, correlation, err
}

// GetProviderRules retrieves a provider's default rule array.
func (c *Client) GetProviderRules(ctx context.Context, providerID string) ([]core.PolicyRule, string, error) {
	var rules []core.PolicyRule
	correlation, err := c.get(ctx, c.url().
		setPath(api.ProviderRulesRoute).
		setPathParam("id", providerID).
		build(), &rules)
	return rules, correlation, err
}

// SetProviderRules replaces a provider's default rule array.
func (c *Client) SetProviderRules(ctx context.Context, providerID string, rules []core.PolicyRule) ([]core.PolicyRule, string, error) {
	var stored []core.PolicyRule
	correlation, err := c.put(ctx, c.url().
		setPath(api.ProviderRulesRoute).
		setPathParam("id", providerID).
		build(), rules, &stored)
	return stored, correlation, err
}
