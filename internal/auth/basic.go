package auth

import (
	"context"
	"encoding/base64"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/middleware"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// Basic sends HTTP Basic credentials on every request.
type Basic struct {
	encoded string
}

// NewBasic returns a Basic adapter. Both id and secret are required.
func NewBasic(id, secret string) (*Basic, error) {
	cfgErr := &apierr.ConfigError{Component: "auth.basic", Fields: map[string]string{}}
	if id == "" {
		cfgErr.Fields["id"] = "must not be empty"
	}
	if secret == "" {
		cfgErr.Fields["secret"] = "must not be empty"
	}
	if len(cfgErr.Fields) > 0 {
		return nil, cfgErr
	}

	return &Basic{encoded: base64.StdEncoding.EncodeToString([]byte(id + ":" + secret))}, nil
}

// Authentication sets "Authorization: Basic <base64(id:secret)>".
func (b *Basic) Authentication(Client) middleware.Middleware {
	header := "Basic " + b.encoded
	return func(ctx context.Context, req *request.Request, next middleware.Next) (*request.Response, error) {
		setAuthorization(req, header)
		return next(ctx, req)
	}
}
