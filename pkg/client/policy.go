package client

import (
	"context"

	"github.com/usefloww/floww/internal/api"
	"github.com/usefloww/floww/internal/core"
	"github.com/usefloww/floww/internal/service"
)

// Evaluate asks the server to evaluate an action for a workflow against
// a provider. The returned decision includes the full rule chain.
func (c *Client) Evaluate(ctx context.Context, req service.EvaluateRequest) (*service.Decision, string, error) {
	var decision service.Decision
	correlation, err := c.post(ctx, c.url().
		setPath(api.EvaluateRoute).
		build(), req, &decision)
	if err != nil {
		return nil, correlation, err
	}
	return &decision, correlation, nil
}

// ExplainTrace runs a dry-run evaluation and returns the detailed trace.
func (c *Client) ExplainTrace(ctx context.Context, req service.EvaluateRequest) (*core.EvaluationTrace, string, error) {
	var trace core.EvaluationTrace
	correlation, err := c.post(ctx, c.url().
		setPath(api.ExplainRoute).
		build(), req, &trace)
	if err != nil {
		return nil, correlation, err
	}
	return &trace, correlation, nil
}
