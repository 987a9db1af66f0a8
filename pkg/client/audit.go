package client

import (
	"context"

	"github.com/usefloww/floww/internal/api"
	"github.com/usefloww/floww/internal/core"
)

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	WorkflowID    string
	ProviderID    string
}

// ListAudits retrieves the latest audit entries from the server, limited to the specified number.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.ListAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.WorkflowID != "" {
		ub = ub.addQueryParam("workflow_id", opts.WorkflowID)
	}
	if opts.ProviderID != "" {
		ub = ub.addQueryParam("provider_id", opts.ProviderID)
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}
