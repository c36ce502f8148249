package client

import (
	"log/slog"
	"maps"

	"github.com/jsamuelsen11/maingo/internal/auth"
	"github.com/jsamuelsen11/maingo/internal/connector"
	"github.com/jsamuelsen11/maingo/internal/platform/telemetry"
)

// Option configures New.
type Option func(*options)

type options struct {
	transport   connector.Transport
	logger      *slog.Logger
	metrics     *telemetry.Metrics
	serviceName string
	access      auth.TokenFunc
	refresh     auth.TokenFunc
	adapter     auth.Adapter
	permanent   map[string]string
}

// WithTransport replaces the default instrumented HTTP transport.
func WithTransport(t connector.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithLogger sets the logger shared by the transport, connector and auth
// adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics enables request, token fetch and refire metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithServiceName names the upstream in traces, metrics and breaker logs.
// Defaults to the configured hostname.
func WithServiceName(name string) Option {
	return func(o *options) { o.serviceName = name }
}

// WithTokenFuncs supplies the OAuth2 token funcs, overriding the built-in
// grants.
func WithTokenFuncs(access, refresh auth.TokenFunc) Option {
	return func(o *options) {
		o.access = access
		o.refresh = refresh
	}
}

// WithAuth installs a ready-built adapter instead of one built from the
// auth config.
func WithAuth(a auth.Adapter) Option {
	return func(o *options) { o.adapter = a }
}

// WithPermanentHeaders adds headers that win over every other tier. They are
// merged over the configured permanent headers.
func WithPermanentHeaders(h map[string]string) Option {
	return func(o *options) {
		if o.permanent == nil {
			o.permanent = make(map[string]string, len(h))
		}
		maps.Copy(o.permanent, h)
	}
}
