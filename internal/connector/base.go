// Package connector turns logical requests into HTTP calls. Base owns the
// header tiers, the middleware stacks, and the transport; REST and GraphQL
// add the verb surface on top of it.
//
// Headers are merged per call in three tiers, later tiers winning:
//
//	persistent (SetHeader/SetHeaders) < temporary (Request.Headers) < permanent
//
// The request middleware stack is folded around the send step, so the first
// middleware registered sees the request first and the response last. The
// URL and body are only built inside the send step, after every middleware
// had its chance to rewrite the request.
package connector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/middleware"
	"github.com/jsamuelsen11/maingo/internal/platform/config"
	"github.com/jsamuelsen11/maingo/internal/platform/logging"
	"github.com/jsamuelsen11/maingo/internal/platform/telemetry"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// Option configures a Base.
type Option func(*Base)

// WithLogger sets the logger used for send and failure logs.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics enables the refire counter.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(b *Base) {
		b.metrics = m
	}
}

// Base is the connector core shared by REST and GraphQL.
type Base struct {
	hostname  string
	format    request.Format
	permanent http.Header
	transport Transport
	logger    *slog.Logger
	metrics   *telemetry.Metrics

	requestStack  *middleware.Stack[middleware.Middleware]
	responseStack *middleware.Stack[middleware.ResponseMiddleware]
	taps          *middleware.Stack[middleware.Tap]
	responseTaps  *middleware.Stack[middleware.ResponseTap]

	mu           sync.Mutex
	persistent   http.Header
	tempHostname string
	lastRequest  *request.Request
	lastResponse *request.Response
}

// NewBase validates cfg and returns a connector core that sends through
// transport. cfg.Headers seeds the persistent tier and cfg.PermanentHeaders
// becomes the fixed permanent tier.
func NewBase(cfg config.ClientConfig, transport Transport, opts ...Option) (*Base, error) {
	const component = "connector"

	if transport == nil {
		return nil, apierr.NewConfigError(component, "transport", "must not be nil")
	}
	if err := validateHostname(cfg.Hostname); err != nil {
		return nil, apierr.NewConfigError(component, "hostname", err.Error())
	}
	format, err := request.ParseFormat(cfg.SearchParamFormat)
	if err != nil {
		return nil, apierr.NewConfigError(component, "search_param_format", err.Error())
	}

	b := &Base{
		hostname:      cfg.Hostname,
		format:        format,
		permanent:     request.FromMap(cfg.PermanentHeaders),
		transport:     transport,
		logger:        logging.Discard(),
		requestStack:  middleware.NewStack[middleware.Middleware](),
		responseStack: middleware.NewStack[middleware.ResponseMiddleware](),
		taps:          middleware.NewStack[middleware.Tap](),
		responseTaps:  middleware.NewStack[middleware.ResponseTap](),
		persistent:    request.FromMap(cfg.Headers),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Hostname returns the configured hostname.
func (b *Base) Hostname() string { return b.hostname }

// Format returns the search param format.
func (b *Base) Format() request.Format { return b.format }

// RequestMiddleware returns the request middleware stack.
func (b *Base) RequestMiddleware() *middleware.Stack[middleware.Middleware] { return b.requestStack }

// ResponseMiddleware returns the response middleware stack.
func (b *Base) ResponseMiddleware() *middleware.Stack[middleware.ResponseMiddleware] {
	return b.responseStack
}

// Taps returns the request tap stack.
func (b *Base) Taps() *middleware.Stack[middleware.Tap] { return b.taps }

// ResponseTaps returns the response tap stack.
func (b *Base) ResponseTaps() *middleware.Stack[middleware.ResponseTap] { return b.responseTaps }

// SetHeader sets a persistent header, replacing any previous value. value
// must be a string, fmt.Stringer, number or bool.
func (b *Base) SetHeader(name string, value any) error {
	v, err := request.HeaderValue(value)
	if err != nil {
		return fmt.Errorf("setting header %q: %w", name, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.persistent.Set(name, v)
	return nil
}

// SetHeaders replaces the whole persistent tier.
func (b *Base) SetHeaders(h map[string]string) {
	fresh := request.FromMap(h)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.persistent = fresh
}

// RemoveHeader drops a persistent header. Permanent headers are unaffected.
func (b *Base) RemoveHeader(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.persistent.Del(name)
}

// Headers returns the headers the next call will start from: the persistent
// tier overlaid with the permanent one.
func (b *Base) Headers() http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return request.MergeHeaders(b.persistent, b.permanent)
}

// SetTempHostname overrides the hostname for the next call only.
func (b *Base) SetTempHostname(hostname string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tempHostname = hostname
}

// LastRequest returns a copy of the last logical request sent, or nil.
func (b *Base) LastRequest() *request.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRequest.Clone()
}

// LastResponse returns a copy of the last response received, or nil.
func (b *Base) LastResponse() *request.Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastResponse.Clone()
}

// BuildURL resolves endpoint against hostname and appends params in the
// configured format. Leading and trailing slashes on endpoint are ignored.
func (b *Base) BuildURL(endpoint string, params request.Params, hostname string) (*url.URL, error) {
	if hostname == "" {
		hostname = b.hostname
	}

	raw := strings.TrimRight(hostname, "/")
	if ep := strings.Trim(endpoint, "/"); ep != "" {
		raw += "/" + ep
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", apierr.ErrInvalidURL, raw, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) URL", apierr.ErrInvalidURL, raw)
	}

	if err := request.AppendParams(u, params, b.format); err != nil {
		return nil, err
	}
	return u, nil
}

// Request sends req through the request middleware, the transport, and the
// response middleware. req is not modified.
func (b *Base) Request(ctx context.Context, req *request.Request) (*request.Response, error) {
	if req == nil {
		return nil, errors.New("connector: nil request")
	}

	logical, err := b.snapshot(req)
	if err != nil {
		return nil, err
	}

	call := logical.Clone()
	call.Headers = request.MergeHeaders(b.persistentHeaders(), logical.Headers, b.permanent)

	var issued *request.Request
	send := func(ctx context.Context, r *request.Request) (*request.Response, error) {
		issued = r.Clone()
		return b.send(ctx, r, logical)
	}

	resp, err := middleware.Chain(send, b.requestStack.Entries()...)(ctx, call)

	if issued != nil {
		b.mu.Lock()
		b.lastRequest = logical
		b.lastResponse = nil
		if err == nil {
			b.lastResponse = resp.Clone()
		}
		b.mu.Unlock()
	}
	if err != nil {
		return nil, err
	}

	if issued == nil {
		issued = call
	}
	if err := middleware.RunTaps(ctx, issued, b.taps.Entries()...); err != nil {
		return nil, err
	}
	if err := middleware.RunResponseTaps(ctx, resp, issued, b.responseTaps.Entries()...); err != nil {
		return nil, err
	}

	return resp, nil
}

// Refire replays the most recently sent logical request through the current
// middleware and auth state.
func (b *Base) Refire(ctx context.Context) (*request.Response, error) {
	b.mu.Lock()
	last := b.lastRequest.Clone()
	b.mu.Unlock()

	if last == nil {
		return nil, apierr.ErrNoRequest
	}
	b.countRefire(ctx)
	return b.Request(ctx, last)
}

// snapshot copies req, consumes the temp hostname, and buffers reader bodies
// so the captured request can be replayed.
func (b *Base) snapshot(req *request.Request) (*request.Request, error) {
	logical := req.Clone()
	logical.Method = strings.ToUpper(logical.Method)

	b.mu.Lock()
	temp := b.tempHostname
	b.tempHostname = ""
	b.mu.Unlock()

	if logical.Hostname == "" {
		logical.Hostname = temp
	}

	if r, ok := logical.Body.(io.Reader); ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("buffering request body: %w", err)
		}
		logical.Body = data
	}
	return logical, nil
}

func (b *Base) persistentHeaders() http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.persistent.Clone()
}

// send is the innermost step of the chain.
func (b *Base) send(ctx context.Context, r, logical *request.Request) (*request.Response, error) {
	u, err := b.BuildURL(r.Endpoint, r.Params, r.Hostname)
	if err != nil {
		return nil, err
	}

	body, contentType, err := BuildBody(r.Body)
	if err != nil {
		return nil, err
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.Method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apierr.ErrInvalidURL, err)
	}
	httpReq.Header = r.Headers.Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	logger := logging.FromContextOr(ctx, b.logger)
	sanitized := logging.SanitizeURL(u)
	start := time.Now()

	httpResp, err := b.transport.Do(ctx, httpReq)
	if err != nil {
		logger.WarnContext(ctx, "transport failed",
			slog.String("method", r.Method),
			slog.String("url", sanitized),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return nil, &apierr.TransportError{Method: r.Method, URL: sanitized, Err: err}
	}

	resp, err := request.FromHTTP(httpResp)
	if err != nil {
		return nil, &apierr.TransportError{Method: r.Method, URL: sanitized, Err: err}
	}
	resp.Method = r.Method
	resp.URL = u

	logger.DebugContext(ctx, "request sent",
		slog.String("method", r.Method),
		slog.String("url", sanitized),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	resp.SetRefire(func(ctx context.Context) (*request.Response, error) {
		b.countRefire(ctx)
		return b.Request(ctx, logical.Clone())
	})

	return middleware.ChainResponse(b.responseStack.Entries()...)(ctx, resp)
}

func (b *Base) countRefire(ctx context.Context) {
	if b.metrics != nil {
		b.metrics.RefireTotal.Add(ctx, 1)
	}
}

func validateHostname(hostname string) error {
	if hostname == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(hostname)
	if err != nil {
		return fmt.Errorf("unparseable: %w", err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%q is not an absolute http(s) URL", hostname)
	}
	return nil
}
