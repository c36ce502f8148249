package config

const (
	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"log.level":  "info",
		"log.format": "json",

		"client.connector":                       ConnectorREST,
		"client.hostname":                        "",
		"client.graphql_endpoint":                "",
		"client.search_param_format":             "delimited",
		"client.timeout":                         "30s",
		"client.rate_limit.requests_per_second":  0,
		"client.rate_limit.burst_size":           0,
		"client.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"client.circuit_breaker.timeout":         "30s",
		"client.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,

		"auth.type":                 AuthNone,
		"auth.basic.id":             "",
		"auth.basic.secret":         "",
		"auth.bearer.token":         "",
		"auth.oauth2.client_id":     "",
		"auth.oauth2.client_secret": "",
		"auth.oauth2.grant_type":    "client_credentials",
		"auth.oauth2.scope":         "",
		"auth.oauth2.token_url":     "",
		"auth.oauth2.refresh_token": "",

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "maingo",
	}
}
