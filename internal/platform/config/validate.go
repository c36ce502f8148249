package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/jsamuelsen11/maingo/internal/apierr"
)

// Validate checks all configuration values and returns aggregated errors.
// Every returned error matches apierr.ErrConfig.
func (c *Config) Validate() error {
	err := errors.Join(
		c.Log.validate(),
		c.Client.validate(),
		c.Auth.validate(),
		c.Telemetry.validate(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apierr.ErrConfig, err)
	}
	return nil
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (cl *ClientConfig) validate() error {
	var errs []error

	switch cl.Connector {
	case ConnectorREST, ConnectorGraphQL:
	default:
		errs = append(errs, fmt.Errorf("client.connector must be one of: rest, graphql; got %q", cl.Connector))
	}

	if cl.Hostname == "" {
		errs = append(errs, errors.New("client.hostname must not be empty"))
	} else if u, err := url.Parse(cl.Hostname); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("client.hostname must be an absolute http(s) URL, got %q", cl.Hostname))
	}

	switch cl.SearchParamFormat {
	case "", "delimited", "indexed", "php":
	default:
		errs = append(errs, fmt.Errorf("client.search_param_format must be one of: delimited, indexed, php; got %q",
			cl.SearchParamFormat))
	}

	if cl.Timeout < 0 {
		errs = append(errs, errors.New("client.timeout must not be negative"))
	}
	if cl.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("client.rate_limit.requests_per_second must not be negative"))
	}
	if cl.RateLimit.RequestsPerSecond > 0 && cl.RateLimit.BurstSize < 1 {
		errs = append(errs, fmt.Errorf("client.rate_limit.burst_size must be >= 1 when rate limiting, got %d",
			cl.RateLimit.BurstSize))
	}
	if cl.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("client.circuit_breaker.max_failures must be >= 1, got %d",
			cl.CircuitBreaker.MaxFailures))
	}

	return errors.Join(errs...)
}

func (a *AuthConfig) validate() error {
	var errs []error

	switch a.Type {
	case "", AuthNone:
	case AuthBasic:
		if a.Basic.ID == "" {
			errs = append(errs, errors.New("auth.basic.id must not be empty"))
		}
		if a.Basic.Secret == "" {
			errs = append(errs, errors.New("auth.basic.secret must not be empty"))
		}
	case AuthBearer:
		if a.Bearer.Token == "" {
			errs = append(errs, errors.New("auth.bearer.token must not be empty"))
		}
	case AuthOAuth2:
		if a.OAuth2.ClientID == "" {
			errs = append(errs, errors.New("auth.oauth2.client_id must not be empty"))
		}
		if a.OAuth2.ClientSecret == "" {
			errs = append(errs, errors.New("auth.oauth2.client_secret must not be empty"))
		}
		if a.OAuth2.GrantType == "" {
			errs = append(errs, errors.New("auth.oauth2.grant_type must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.type must be one of: none, basic, bearer, oauth2; got %q", a.Type))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}
