package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/icanhazfloww"

	EvaluateRoute = "/v1/policy/evaluate"
	ExplainRoute  = "/v1/policy/explain"

	AdminParent        = "/v1/admin/"
	GrantRulesRoute    = AdminParent + "grants/{id}/rules"
	ProviderRulesRoute = AdminParent + "providers/{id}/rules"
	ListAuditsRoute    = AdminParent + "audits"
)
