// Package auth provides the authentication adapters a client installs into
// its middleware stacks: None, Basic, Bearer and OAuth2.
//
// An adapter contributes a request middleware that decorates outgoing
// requests, and optionally (Checker) a response middleware that inspects
// responses, which OAuth2 uses to refresh its token and refire once after a
// 401 or 403.
package auth

import (
	"context"
	"net/http"

	"github.com/jsamuelsen11/maingo/internal/middleware"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// Client is the part of a connector that adapters and token funcs may call.
type Client interface {
	Request(ctx context.Context, req *request.Request) (*request.Response, error)
}

// Adapter produces the request middleware for one auth strategy.
type Adapter interface {
	Authentication(c Client) middleware.Middleware
}

// Checker is implemented by adapters that inspect responses.
type Checker interface {
	CheckAuthentication(c Client) middleware.ResponseMiddleware
}

// Check returns a's response middleware, or a pass-through when a does not
// implement Checker.
func Check(a Adapter, c Client) middleware.ResponseMiddleware {
	if checker, ok := a.(Checker); ok {
		return checker.CheckAuthentication(c)
	}
	return func(ctx context.Context, resp *request.Response, next middleware.ResponseNext) (*request.Response, error) {
		return next(ctx, resp)
	}
}

type (
	authorizingKey struct{}
	refreshedKey   struct{}
)

// WithAuthorizing marks ctx as belonging to a token fetch. Requests issued
// with it skip the OAuth2 middleware, so a token func can call the very
// client it authenticates.
func WithAuthorizing(ctx context.Context) context.Context {
	return context.WithValue(ctx, authorizingKey{}, true)
}

// IsAuthorizing reports whether ctx was marked by WithAuthorizing.
func IsAuthorizing(ctx context.Context) bool {
	v, _ := ctx.Value(authorizingKey{}).(bool)
	return v
}

func withRefreshed(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshedKey{}, true)
}

func alreadyRefreshed(ctx context.Context) bool {
	v, _ := ctx.Value(refreshedKey{}).(bool)
	return v
}

func setAuthorization(req *request.Request, value string) {
	if req.Headers == nil {
		req.Headers = make(http.Header)
	}
	req.Headers.Set("Authorization", value)
}
