// Package request defines the logical request and buffered response that flow
// through the middleware pipeline, together with the pure helpers that merge
// header tiers and serialize query parameters.
//
// A Request is relative: its Endpoint is resolved against the connector's
// hostname (or the per-request Hostname override) only at send time, so
// middleware can still rewrite params, headers, and body before the URL is
// built.
//
//	req := request.New(http.MethodGet, "/resource",
//	    request.WithParams(request.Params{"ids": []string{"1", "2"}}),
//	    request.WithHeader("Accept", "application/json"),
//	)
package request

import (
	"bytes"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Params maps query parameter names to JSON scalars or slices of scalars.
type Params map[string]any

// Request is the logical shape of one API call.
type Request struct {
	Method   string
	Endpoint string
	Body     any
	Params   Params
	Headers  http.Header

	// Hostname overrides the connector hostname for this call only.
	Hostname string
}

// Option configures a Request.
type Option func(*Request)

// New creates a Request for method and endpoint. The method is upper-cased so
// "get" and "GET" are equivalent.
func New(method, endpoint string, opts ...Option) *Request {
	r := &Request{
		Method:   strings.ToUpper(method),
		Endpoint: endpoint,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithParams merges params into the request query parameters.
func WithParams(params Params) Option {
	return func(r *Request) {
		if r.Params == nil {
			r.Params = make(Params, len(params))
		}
		maps.Copy(r.Params, params)
	}
}

// WithHeaders adds temporary headers scoped to this call.
func WithHeaders(h http.Header) Option {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(http.Header, len(h))
		}
		for name, values := range h {
			r.Headers[http.CanonicalHeaderKey(name)] = slices.Clone(values)
		}
	}
}

// WithHeader sets a single temporary header scoped to this call.
func WithHeader(name, value string) Option {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(http.Header)
		}
		r.Headers.Set(name, value)
	}
}

// WithBody sets the request body. See connector.BuildBody for how each body
// type is encoded.
func WithBody(body any) Option {
	return func(r *Request) {
		r.Body = body
	}
}

// WithHostname overrides the connector hostname for this call.
func WithHostname(hostname string) Option {
	return func(r *Request) {
		r.Hostname = hostname
	}
}

// Clone returns a deep copy of the request. Byte slice bodies are copied;
// other body values are shared since they are treated as read-only.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}

	c := *r
	if r.Params != nil {
		c.Params = maps.Clone(r.Params)
	}
	if r.Headers != nil {
		c.Headers = r.Headers.Clone()
	}
	if b, ok := r.Body.([]byte); ok {
		c.Body = bytes.Clone(b)
	}
	return &c
}
