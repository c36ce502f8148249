package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/jsamuelsen11/maingo/internal/request"
)

// ErrPanic is returned by Recovery when an inner middleware panics.
var ErrPanic = errors.New("middleware panicked")

// Recovery returns middleware that converts a panic further down the chain
// into an error wrapping ErrPanic. The panic value and stack are logged.
func Recovery(logger *slog.Logger) Middleware {
	return func(ctx context.Context, req *request.Request, next Next) (resp *request.Response, err error) {
		defer func() {
			if v := recover(); v != nil {
				logger.ErrorContext(ctx, "panic recovered",
					slog.String("panic", fmt.Sprint(v)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", req.Method),
					slog.String("endpoint", req.Endpoint),
				)
				resp, err = nil, fmt.Errorf("%w: %v", ErrPanic, v)
			}
		}()

		return next(ctx, req)
	}
}
