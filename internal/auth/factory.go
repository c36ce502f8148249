package auth

import (
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/platform/config"
	"github.com/jsamuelsen11/maingo/internal/platform/telemetry"
)

// Option configures New.
type Option func(*options)

type options struct {
	access, refresh TokenFunc
	httpClient      *http.Client
	logger          *slog.Logger
	metrics         *telemetry.Metrics
}

// WithTokenFuncs supplies the OAuth2 token funcs. Either may be nil to keep
// the ready-made grant for the configured grant type.
func WithTokenFuncs(access, refresh TokenFunc) Option {
	return func(o *options) {
		o.access = access
		o.refresh = refresh
	}
}

// WithHTTPClient sets the HTTP client the ready-made grants use.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithLogger sets the OAuth2 adapter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics enables token fetch metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New builds the adapter selected by cfg.Type.
func New(cfg config.AuthConfig, opts ...Option) (Adapter, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var (
		adapter Adapter
		err     error
	)
	switch cfg.Type {
	case "", config.AuthNone:
		return None{}, nil
	case config.AuthBasic:
		adapter, err = NewBasic(cfg.Basic.ID, cfg.Basic.Secret)
	case config.AuthBearer:
		adapter, err = NewBearer(cfg.Bearer.Token)
	case config.AuthOAuth2:
		adapter, err = newOAuth2FromConfig(cfg.OAuth2, o)
	default:
		return nil, apierr.NewConfigError("auth", "type", "unknown auth type "+cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

func newOAuth2FromConfig(cfg config.OAuth2Config, o *options) (*OAuth2, error) {
	access, refresh := o.access, o.refresh

	if access == nil || refresh == nil {
		if cfg.TokenURL == "" {
			return nil, apierr.NewConfigError("auth.oauth2", "token_url",
				"required unless both token funcs are supplied")
		}
	}
	if access == nil {
		switch cfg.GrantType {
		case GrantClientCredentials:
			access = ClientCredentials(cfg, o.httpClient)
		case GrantRefreshToken:
			access = RefreshTokenGrant(cfg, o.httpClient)
		default:
			return nil, apierr.NewConfigError("auth.oauth2", "grant_type",
				"no built-in token func for "+cfg.GrantType+"; supply one with WithTokenFuncs")
		}
	}
	if refresh == nil {
		refresh = RefreshTokenGrant(cfg, o.httpClient)
	}

	return NewOAuth2(OAuth2Config{
		ClientID:         cfg.ClientID,
		ClientSecret:     cfg.ClientSecret,
		GrantType:        cfg.GrantType,
		Scope:            cfg.Scope,
		AccessTokenFunc:  access,
		RefreshTokenFunc: refresh,
		Logger:           o.logger,
		Metrics:          o.metrics,
	})
}
