// Package client is the entry point for calling an upstream API. A Client
// combines a connector (REST or GraphQL), an auth adapter, and the request
// and response middleware stacks into one value.
//
//	c, err := client.New(cfg.ClientWithAuth(), client.WithLogger(logger))
//	resp, err := c.Get(ctx, "/resource", request.WithParams(request.Params{"ids": []int{1, 2}}))
package client

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/auth"
	"github.com/jsamuelsen11/maingo/internal/connector"
	"github.com/jsamuelsen11/maingo/internal/middleware"
	"github.com/jsamuelsen11/maingo/internal/platform/config"
	"github.com/jsamuelsen11/maingo/internal/platform/httpclient"
	"github.com/jsamuelsen11/maingo/internal/platform/logging"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// AuthKey is the key the auth middleware is installed under in both the
// request and the response stack.
var AuthKey = middleware.Named("auth")

// Client is a configured API client. It is safe for concurrent use.
type Client struct {
	cfg     config.ClientConfig
	conn    connector.Connector
	base    *connector.Base
	adapter auth.Adapter
	methods map[string]connector.Call

	name      string
	transport connector.Transport
}

// New builds a Client from cfg. cfg.Auth selects the auth adapter; use
// config.Config.ClientWithAuth to fill it from a loaded configuration.
func New(cfg config.ClientConfig, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}

	if len(o.permanent) > 0 {
		merged := maps.Clone(cfg.PermanentHeaders)
		if merged == nil {
			merged = make(map[string]string, len(o.permanent))
		}
		maps.Copy(merged, o.permanent)
		cfg.PermanentHeaders = merged
	}

	name := serviceName(cfg, o.serviceName)
	transport := o.transport
	if transport == nil {
		transport = httpclient.New(&cfg, name, o.metrics, o.logger)
	}

	connOpts := []connector.Option{connector.WithLogger(o.logger), connector.WithMetrics(o.metrics)}
	conn, err := newConnector(cfg, transport, connOpts)
	if err != nil {
		return nil, err
	}

	adapter := o.adapter
	if adapter == nil {
		authOpts := []auth.Option{
			auth.WithLogger(o.logger),
			auth.WithMetrics(o.metrics),
			auth.WithHTTPClient(&http.Client{Transport: roundTripper{transport}}),
		}
		if o.access != nil || o.refresh != nil {
			authOpts = append(authOpts, auth.WithTokenFuncs(o.access, o.refresh))
		}
		adapter, err = auth.New(cfg.Auth, authOpts...)
		if err != nil {
			return nil, err
		}
	}

	base := conn.Core()
	base.RequestMiddleware().Use(adapter.Authentication(base), AuthKey)
	base.ResponseMiddleware().Use(auth.Check(adapter, base), AuthKey)

	return &Client{
		cfg:     cfg,
		conn:    conn,
		base:    base,
		adapter: adapter,
		methods: conn.Methods(),

		name:      name,
		transport: transport,
	}, nil
}

func newConnector(cfg config.ClientConfig, t connector.Transport, opts []connector.Option) (connector.Connector, error) {
	var (
		conn connector.Connector
		err  error
	)
	switch cfg.Connector {
	case "", config.ConnectorREST:
		conn, err = connector.NewREST(cfg, t, opts...)
	case config.ConnectorGraphQL:
		conn, err = connector.NewGraphQL(cfg, t, opts...)
	default:
		return nil, apierr.NewConfigError("client", "connector", "unknown connector "+cfg.Connector)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func serviceName(cfg config.ClientConfig, name string) string {
	if name != "" {
		return name
	}
	if u, err := url.Parse(cfg.Hostname); err == nil && u.Host != "" {
		return u.Host
	}
	return "upstream"
}

// roundTripper routes token endpoint calls made by the built-in OAuth2
// grants through the client transport.
type roundTripper struct {
	t connector.Transport
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// The transport may add headers; RoundTrip must not modify req.
	return rt.t.Do(req.Context(), req.Clone(req.Context()))
}

// Connector returns the underlying connector.
func (c *Client) Connector() connector.Connector { return c.conn }

// Auth returns the installed auth adapter.
func (c *Client) Auth() auth.Adapter { return c.adapter }

// Hostname returns the configured hostname.
func (c *Client) Hostname() string { return c.base.Hostname() }

// Methods lists the verbs the connector supports, sorted.
func (c *Client) Methods() []string {
	return slices.Sorted(maps.Keys(c.methods))
}

// Call dispatches method through the connector's dispatch table. body is
// ignored by verbs that carry none.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
	call, ok := c.methods[strings.ToUpper(method)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s connector", apierr.ErrUnsupportedMethod, strings.ToUpper(method), c.connectorName())
	}
	return call(ctx, endpoint, body, opts...)
}

func (c *Client) connectorName() string {
	if c.cfg.Connector == "" {
		return config.ConnectorREST
	}
	return c.cfg.Connector
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, opts ...request.Option) (*request.Response, error) {
	return c.Call(ctx, http.MethodGet, endpoint, nil, opts...)
}

// Head sends a HEAD request.
func (c *Client) Head(ctx context.Context, endpoint string, opts ...request.Option) (*request.Response, error) {
	return c.Call(ctx, http.MethodHead, endpoint, nil, opts...)
}

// Options sends an OPTIONS request.
func (c *Client) Options(ctx context.Context, endpoint string, opts ...request.Option) (*request.Response, error) {
	return c.Call(ctx, http.MethodOptions, endpoint, nil, opts...)
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
	return c.Call(ctx, http.MethodPost, endpoint, body, opts...)
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
	return c.Call(ctx, http.MethodPut, endpoint, body, opts...)
}

// Patch sends a PATCH request.
func (c *Client) Patch(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
	return c.Call(ctx, http.MethodPatch, endpoint, body, opts...)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
	return c.Call(ctx, http.MethodDelete, endpoint, body, opts...)
}

// Query sends a GraphQL operation to the configured endpoint.
func (c *Client) Query(ctx context.Context, body any, opts ...request.Option) (*request.Response, error) {
	return c.Call(ctx, connector.MethodQuery, "", body, opts...)
}

// Do sends an arbitrary request through the full pipeline.
func (c *Client) Do(ctx context.Context, req *request.Request) (*request.Response, error) {
	return c.base.Request(ctx, req)
}

// Refire replays the last request through the current middleware and auth
// state.
func (c *Client) Refire(ctx context.Context) (*request.Response, error) {
	return c.base.Refire(ctx)
}

// SetHeader sets a persistent header. value is converted with spf13/cast.
func (c *Client) SetHeader(name string, value any) error {
	return c.base.SetHeader(name, value)
}

// SetHeaders replaces the persistent headers with h.
func (c *Client) SetHeaders(h map[string]string) { c.base.SetHeaders(h) }

// RemoveHeader removes a persistent header.
func (c *Client) RemoveHeader(name string) { c.base.RemoveHeader(name) }

// Headers returns a copy of the persistent headers.
func (c *Client) Headers() http.Header { return c.base.Headers() }

// SetTempHostname overrides the hostname for the next request only.
func (c *Client) SetTempHostname(hostname string) { c.base.SetTempHostname(hostname) }

// LastRequest returns a copy of the last logical request sent, or nil.
func (c *Client) LastRequest() *request.Request { return c.base.LastRequest() }

// LastResponse returns a copy of the last response received, or nil.
func (c *Client) LastResponse() *request.Response { return c.base.LastResponse() }

// Name identifies the upstream in health results.
func (c *Client) Name() string { return c.name }

// HealthCheck reports the transport's health. Transports without a health
// check are always healthy.
func (c *Client) HealthCheck(ctx context.Context) error {
	if hc, ok := c.transport.(interface {
		HealthCheck(ctx context.Context) error
	}); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
