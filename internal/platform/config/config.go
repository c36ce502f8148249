// Package config provides configuration loading and validation for the client.
// Configuration is loaded from YAML files with environment variable overrides
// using a layered system: defaults -> base.yaml -> {profile}.yaml -> env vars.
package config

import "time"

// Config holds all configuration for the client binary.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Client    ClientConfig    `koanf:"client"`
	Auth      AuthConfig      `koanf:"auth"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Connector kinds.
const (
	ConnectorREST    = "rest"
	ConnectorGraphQL = "graphql"
)

// ClientConfig describes one API: where it lives, how requests are shaped,
// and the transport policy used to reach it.
type ClientConfig struct {
	Connector         string            `koanf:"connector"`
	Hostname          string            `koanf:"hostname"`
	GraphQLEndpoint   string            `koanf:"graphql_endpoint"`
	SearchParamFormat string            `koanf:"search_param_format"`
	Headers           map[string]string `koanf:"headers"`
	PermanentHeaders  map[string]string `koanf:"permanent_headers"`
	Timeout           time.Duration     `koanf:"timeout"`

	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`

	Auth AuthConfig `koanf:"-"`
}

// RateLimitConfig holds client-side rate limiting settings. A zero
// RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// Auth strategies.
const (
	AuthNone   = "none"
	AuthBasic  = "basic"
	AuthBearer = "bearer"
	AuthOAuth2 = "oauth2"
)

// AuthConfig selects and parameterizes the auth strategy.
type AuthConfig struct {
	Type   string       `koanf:"type"`
	Basic  BasicConfig  `koanf:"basic"`
	Bearer BearerConfig `koanf:"bearer"`
	OAuth2 OAuth2Config `koanf:"oauth2"`
}

// BasicConfig holds HTTP Basic credentials.
type BasicConfig struct {
	ID     string `koanf:"id"`
	Secret string `koanf:"secret"`
}

// BearerConfig holds a static bearer token.
type BearerConfig struct {
	Token string `koanf:"token"`
}

// OAuth2Config holds OAuth2 client settings. TokenURL and RefreshToken are
// only needed by the ready-made grant funcs.
type OAuth2Config struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	GrantType    string `koanf:"grant_type"`
	Scope        string `koanf:"scope"`
	TokenURL     string `koanf:"token_url"`
	RefreshToken string `koanf:"refresh_token"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

// ClientWithAuth returns the client config with the top-level auth section
// attached, which is the shape client.New expects.
func (c *Config) ClientWithAuth() ClientConfig {
	cl := c.Client
	cl.Auth = c.Auth
	return cl
}
