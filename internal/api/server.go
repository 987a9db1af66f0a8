package api

import (
	"net/http"

	"github.com/usefloww/floww/internal/api/middleware"
	"github.com/usefloww/floww/internal/audit"
	"github.com/usefloww/floww/internal/core"
	"github.com/usefloww/floww/internal/service"
)

type Server struct {
	policyService *service.PolicyService
	auditor       core.Auditor
}

func NewServer(
	policyService *service.PolicyService,
	auditor core.Auditor,
) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}

	return &Server{
		policyService: policyService,
		auditor:       auditor,
	}
}

func (s *Server) Routes(adminSigningKey []byte) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// policy evaluation routes
	mux.HandleFunc("POST "+EvaluateRoute, s.handleEvaluate)
	mux.HandleFunc("POST "+ExplainRoute, s.handleExplain)

	// admin routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET "+GrantRulesRoute, s.handleGetGrantRules)
	adminMux.HandleFunc("PUT "+GrantRulesRoute, s.handleSetGrantRules)
	adminMux.HandleFunc("GET "+ProviderRulesRoute, s.handleGetProviderRules)
	adminMux.HandleFunc("PUT "+ProviderRulesRoute, s.handleSetProviderRules)
	adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
	mux.Handle(AdminParent, middleware.AdminAuth(adminSigningKey)(adminMux))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
