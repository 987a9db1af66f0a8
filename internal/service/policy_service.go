package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/usefloww/floww/internal/core"
	"github.com/usefloww/floww/internal/engine"
	"github.com/usefloww/floww/internal/validation"
)

// PolicyService composes the chain builder and the evaluator behind the
// policy entry points, and records every decision through the auditor.
type PolicyService struct {
	store    core.RecordStore
	resolver core.GrantResolver
	builder  *engine.Builder
	auditor  core.Auditor
}

func NewPolicyService(store core.RecordStore, resolver core.GrantResolver, auditor core.Auditor) *PolicyService {
	return &PolicyService{
		store:    store,
		resolver: resolver,
		builder:  engine.NewBuilder(store, resolver),
		auditor:  auditor,
	}
}

func (s *PolicyService) validateRequest(req EvaluateRequest) error {
	if req.WorkflowID == "" {
		return httpError(http.StatusBadRequest, fmt.Errorf("workflowId is required"))
	}
	if req.ProviderID == "" {
		return httpError(http.StatusBadRequest, fmt.Errorf("providerId is required"))
	}
	if req.Action == "" {
		return httpError(http.StatusBadRequest, fmt.Errorf("action is required"))
	}
	return nil
}

// EvaluateAction builds the rule chain for (workflow, provider) and
// evaluates the action against it. The chain is returned alongside the
// result for explainability.
func (s *PolicyService) EvaluateAction(ctx context.Context, req EvaluateRequest) (*Decision, error) {
	logger := log.Ctx(ctx)

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	reqID, _ := ctx.Value("correlation_id").(string)

	auditEntry := core.AuditEntry{
		ID:         reqID,
		Time:       time.Now(),
		Action:     "policy.evaluate",
		WorkflowID: req.WorkflowID,
		ProviderID: req.ProviderID,
		ActionName: req.Action,
		Parameters: req.Parameters,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log")
		}
	}()

	chain, err := s.builder.Build(ctx, req.WorkflowID, req.ProviderID)
	if err != nil {
		auditEntry.Error = "building rule chain failed"
		return nil, httpError(http.StatusInternalServerError,
			fmt.Errorf("building rule chain: %w", err))
	}

	result, err := engine.Evaluate(chain, req.Action, req.Parameters)
	if err != nil {
		// a malformed pattern in a stored rule; a data-quality bug the
		// rule author must fix, not a policy decision
		auditEntry.Error = err.Error()
		return nil, httpError(http.StatusInternalServerError,
			fmt.Errorf("evaluating rule chain: %w", err))
	}

	auditEntry.Decision = result.Decision
	auditEntry.Reason = result.Reason
	if result.MatchedRule != nil {
		auditEntry.RuleSource = result.MatchedRule.Source
	}

	logger.Debug().
		Str("workflow", req.WorkflowID).
		Str("provider", req.ProviderID).
		Str("action", req.Action).
		Str("decision", string(result.Decision)).
		Msg("policy evaluated")

	return &Decision{
		PolicyEvaluationResult: *result,
		Chain:                  chain,
	}, nil
}

// ExplainAction runs a dry-run trace of the evaluation. Traces are
// diagnostic and are not recorded as decisions in the audit log.
func (s *PolicyService) ExplainAction(ctx context.Context, req EvaluateRequest) (*core.EvaluationTrace, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	chain, err := s.builder.Build(ctx, req.WorkflowID, req.ProviderID)
	if err != nil {
		return nil, httpError(http.StatusInternalServerError,
			fmt.Errorf("building rule chain: %w", err))
	}

	trace := engine.Trace(chain, req.Action, req.Parameters)
	trace.CorrelationID, _ = ctx.Value("correlation_id").(string)
	trace.WorkflowID = req.WorkflowID
	trace.ProviderID = req.ProviderID

	return &trace, nil
}

func (s *PolicyService) GetGrantRules(ctx context.Context, grantID string) ([]core.PolicyRule, error) {
	rules, err := s.store.GetGrantRules(ctx, grantID)
	if err != nil {
		if errors.Is(err, core.ErrGrantNotFound) {
			return nil, httpError(http.StatusNotFound, err)
		}
		return nil, httpError(http.StatusInternalServerError, err)
	}
	return rules, nil
}

// SetGrantRules validates and replaces the grant's whole rule array.
func (s *PolicyService) SetGrantRules(ctx context.Context, grantID string, rules []core.PolicyRule) ([]core.PolicyRule, error) {
	validated, err := validation.ValidateRules(rules)
	if err != nil {
		return nil, httpError(http.StatusBadRequest, fmt.Errorf("validating rules: %w", err))
	}

	stored, err := s.store.SetGrantRules(ctx, grantID, validated)
	if err != nil {
		if errors.Is(err, core.ErrGrantNotFound) {
			return nil, httpError(http.StatusNotFound, err)
		}
		return nil, httpError(http.StatusInternalServerError, err)
	}

	log.Ctx(ctx).Info().Str("grant", grantID).Int("rules", len(stored)).Msg("grant rules replaced")
	return stored, nil
}

func (s *PolicyService) GetProviderDefaultRules(ctx context.Context, providerID string) ([]core.PolicyRule, error) {
	rules, err := s.store.GetProviderDefaultRules(ctx, providerID)
	if err != nil {
		return nil, httpError(http.StatusInternalServerError, err)
	}
	return rules, nil
}

// SetProviderDefaultRules validates and replaces the provider's whole
// default rule array.
func (s *PolicyService) SetProviderDefaultRules(ctx context.Context, providerID string, rules []core.PolicyRule) ([]core.PolicyRule, error) {
	validated, err := validation.ValidateRules(rules)
	if err != nil {
		return nil, httpError(http.StatusBadRequest, fmt.Errorf("validating rules: %w", err))
	}

	stored, err := s.store.SetProviderDefaultRules(ctx, providerID, validated)
	if err != nil {
		return nil, httpError(http.StatusInternalServerError, err)
	}

	log.Ctx(ctx).Info().Str("provider", providerID).Int("rules", len(stored)).Msg("provider default rules replaced")
	return stored, nil
}
