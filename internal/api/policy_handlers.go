package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/usefloww/floww/internal/api/presenter"
	"github.com/usefloww/floww/internal/service"
)

// handleEvaluate processes policy evaluation requests.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload service.EvaluateRequest
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode evaluate request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	decision, err := s.policyService.EvaluateAction(ctx, payload)
	if err != nil {
		logger.Warn().Err(err).Msg("policy evaluation failed")
		presenter.Err(w, r, err, "evaluation failed")
		return
	}

	presenter.JSON(w, r, decision, http.StatusOK)
}

// handleExplain processes dry-run trace requests.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload service.EvaluateRequest
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode explain request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	trace, err := s.policyService.ExplainAction(ctx, payload)
	if err != nil {
		logger.Warn().Err(err).Msg("policy explain failed")
		presenter.Err(w, r, err, "explain failed")
		return
	}

	presenter.JSON(w, r, trace, http.StatusOK)
}
