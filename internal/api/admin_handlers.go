package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/usefloww/floww/internal/api/presenter"
	"github.com/usefloww/floww/internal/core"
)

// handleGetGrantRules returns the rule array stored on a grant.
func (s *Server) handleGetGrantRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rules, err := s.policyService.GetGrantRules(ctx, r.PathValue("id"))
	if err != nil {
		presenter.Err(w, r, err, "failed to retrieve grant rules")
		return
	}
	if rules == nil {
		rules = []core.PolicyRule{}
	}

	presenter.JSON(w, r, rules, http.StatusOK)
}

// handleSetGrantRules replaces the rule array stored on a grant.
func (s *Server) handleSetGrantRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var rules []core.PolicyRule
	if err := DecodePayload(r, &rules, true /* allow empty */); err != nil {
		logger.Warn().Err(err).Msg("failed to decode rules payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	stored, err := s.policyService.SetGrantRules(ctx, r.PathValue("id"), rules)
	if err != nil {
		presenter.Err(w, r, err, "failed to set grant rules")
		return
	}
	if stored == nil {
		stored = []core.PolicyRule{}
	}

	presenter.JSON(w, r, stored, http.StatusOK)
}

// handleGetProviderRules returns a provider's default rule array.
func (s *Server) handleGetProviderRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rules, err := s.policyService.GetProviderDefaultRules(ctx, r.PathValue("id"))
	if err != nil {
		presenter.Err(w, r, err, "failed to retrieve provider rules")
		return
	}

	presenter.JSON(w, r, rules, http.StatusOK)
}

// handleSetProviderRules replaces a provider's default rule array.
func (s *Server) handleSetProviderRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var rules []core.PolicyRule
	if err := DecodePayload(r, &rules, true /* allow empty */); err != nil {
		logger.Warn().Err(err).Msg("failed to decode rules payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	stored, err := s.policyService.SetProviderDefaultRules(ctx, r.PathValue("id"), rules)
	if err != nil {
		presenter.Err(w, r, err, "failed to set provider rules")
		return
	}
	if stored == nil {
		stored = []core.PolicyRule{}
	}

	presenter.JSON(w, r, stored, http.StatusOK)
}

// handleAdminAudit processes requests to retrieve audit log entries.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	// filters
	q := r.URL.Query()
	limitStr := q.Get("limit")

	filterCorrelationID := q.Get("correlation_id")
	filterWorkflowID := q.Get("workflow_id")
	filterProviderID := q.Get("provider_id")

	limit := 50
	if limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err != nil {
			logger.Warn().Err(err).Str("limit", limitStr).Msg("invalid limit parameter")
			presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
			return
		} else {
			limit = v
		}
	}

	var entries []core.AuditEntry
	var err error

	if filterCorrelationID != "" || filterWorkflowID != "" || filterProviderID != "" {
		logger.Info().Msgf("applying audit log filters")
		entries, err = s.auditor.Find(func(entry core.AuditEntry) bool {
			if filterCorrelationID != "" && entry.ID != filterCorrelationID {
				return false
			}
			if filterWorkflowID != "" && entry.WorkflowID != filterWorkflowID {
				return false
			}
			if filterProviderID != "" && entry.ProviderID != filterProviderID {
				return false
			}
			return true
		}, limit)
	} else {
		logger.Debug().Msgf("retrieving recent audit log entries")
		entries, err = s.auditor.GetRecent(limit)
	}

	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}
