package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen11/maingo/internal/platform/httpclient"
	"github.com/jsamuelsen11/maingo/internal/platform/logging"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// Logging returns middleware that logs the start and completion of each call.
// It stores a child logger enriched with the request and correlation IDs via
// logging.WithLogger for the rest of the chain. Headers are logged at debug
// level with credentials redacted.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, req *request.Request, next Next) (*request.Response, error) {
		start := time.Now()

		child := logger.With(
			slog.String("request_id", httpclient.RequestIDFromContext(ctx)),
			slog.String("correlation_id", httpclient.CorrelationIDFromContext(ctx)),
		)
		ctx = logging.WithLogger(ctx, child)

		child.InfoContext(ctx, "request started",
			slog.String("method", req.Method),
			slog.String("endpoint", req.Endpoint),
		)

		if child.Enabled(ctx, slog.LevelDebug) {
			headerAttrs := RedactHeaders(req.Headers)
			args := make([]any, 0, len(headerAttrs))
			for _, a := range headerAttrs {
				args = append(args, a)
			}
			child.DebugContext(ctx, "request headers", args...)
		}

		resp, err := next(ctx, req)
		if err != nil {
			child.WarnContext(ctx, "request failed",
				slog.String("method", req.Method),
				slog.String("endpoint", req.Endpoint),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)
			return nil, err
		}

		child.InfoContext(ctx, "request completed",
			slog.String("method", req.Method),
			slog.String("endpoint", req.Endpoint),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, nil
	}
}
