package middleware

import (
	"context"
	"time"

	"github.com/jsamuelsen11/maingo/internal/request"
)

// Timeout returns middleware that bounds the rest of the chain, including the
// transport send, by d. The core imposes no deadline of its own.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, req *request.Request, next Next) (*request.Response, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next(ctx, req)
	}
}
