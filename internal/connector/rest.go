package connector

import (
	"context"
	"net/http"

	"github.com/jsamuelsen11/maingo/internal/platform/config"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// Call is one entry of a connector's dispatch table. Verbs without a body
// ignore body.
type Call func(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error)

// REST is a connector exposing the HTTP verbs.
type REST struct {
	*Base
}

// NewREST returns a REST connector.
func NewREST(cfg config.ClientConfig, transport Transport, opts ...Option) (*REST, error) {
	base, err := NewBase(cfg, transport, opts...)
	if err != nil {
		return nil, err
	}
	return &REST{Base: base}, nil
}

// Get sends a GET request.
func (c *REST) Get(ctx context.Context, endpoint string, opts ...request.Option) (*request.Response, error) {
	return c.Request(ctx, request.New(http.MethodGet, endpoint, opts...))
}

// Head sends a HEAD request.
func (c *REST) Head(ctx context.Context, endpoint string, opts ...request.Option) (*request.Response, error) {
	return c.Request(ctx, request.New(http.MethodHead, endpoint, opts...))
}

// Options sends an OPTIONS request.
func (c *REST) Options(ctx context.Context, endpoint string, opts ...request.Option) (*request.Response, error) {
	return c.Request(ctx, request.New(http.MethodOptions, endpoint, opts...))
}

// Post sends a POST request with body.
func (c *REST) Post(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
	return c.withBody(ctx, http.MethodPost, endpoint, body, opts)
}

// Put sends a PUT request with body.
func (c *REST) Put(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
	return c.withBody(ctx, http.MethodPut, endpoint, body, opts)
}

// Patch sends a PATCH request with body.
func (c *REST) Patch(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
	return c.withBody(ctx, http.MethodPatch, endpoint, body, opts)
}

// Delete sends a DELETE request. body may be nil.
func (c *REST) Delete(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
	return c.withBody(ctx, http.MethodDelete, endpoint, body, opts)
}

func (c *REST) withBody(ctx context.Context, method, endpoint string, body any, opts []request.Option) (*request.Response, error) {
	opts = append([]request.Option{request.WithBody(body)}, opts...)
	return c.Request(ctx, request.New(method, endpoint, opts...))
}

// Methods returns the REST dispatch table keyed by upper-case verb.
func (c *REST) Methods() map[string]Call {
	noBody := func(fn func(context.Context, string, ...request.Option) (*request.Response, error)) Call {
		return func(ctx context.Context, endpoint string, _ any, opts ...request.Option) (*request.Response, error) {
			return fn(ctx, endpoint, opts...)
		}
	}

	return map[string]Call{
		http.MethodGet:     noBody(c.Get),
		http.MethodHead:    noBody(c.Head),
		http.MethodOptions: noBody(c.Options),
		http.MethodPost:    c.Post,
		http.MethodPut:     c.Put,
		http.MethodPatch:   c.Patch,
		http.MethodDelete:  c.Delete,
	}
}
