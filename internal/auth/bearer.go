package auth

import (
	"context"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/middleware"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// Bearer sends a static bearer token on every request.
type Bearer struct {
	token string
}

// NewBearer returns a Bearer adapter for token.
func NewBearer(token string) (*Bearer, error) {
	if token == "" {
		return nil, apierr.NewConfigError("auth.bearer", "token", "must not be empty")
	}
	return &Bearer{token: token}, nil
}

// Authentication sets "Authorization: Bearer <token>".
func (b *Bearer) Authentication(Client) middleware.Middleware {
	header := "Bearer " + b.token
	return func(ctx context.Context, req *request.Request, next middleware.Next) (*request.Response, error) {
		setAuthorization(req, header)
		return next(ctx, req)
	}
}
