package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/maingo/internal/platform/httpclient"
	"github.com/jsamuelsen11/maingo/internal/request"
)

const (
	headerRequestID     = "X-Request-ID"
	headerCorrelationID = "X-Correlation-ID"
)

// RequestID returns middleware that stamps each outgoing request with an
// X-Request-ID. An ID already set on the request wins, then one carried by
// the context (httpclient.WithRequestID); otherwise a new UUID is generated.
// The ID is also stored in the context passed down the chain.
func RequestID() Middleware {
	return func(ctx context.Context, req *request.Request, next Next) (*request.Response, error) {
		id := req.Headers.Get(headerRequestID)
		if id == "" {
			id = httpclient.RequestIDFromContext(ctx)
		}
		if id == "" {
			id = uuid.NewString()
		}
		setHeader(req, headerRequestID, id)
		return next(httpclient.WithRequestID(ctx, id), req)
	}
}

// CorrelationID returns middleware that stamps X-Correlation-ID. It reuses an
// ID already on the request or in the context and falls back to the request
// ID, so it should be registered after RequestID.
func CorrelationID() Middleware {
	return func(ctx context.Context, req *request.Request, next Next) (*request.Response, error) {
		id := req.Headers.Get(headerCorrelationID)
		if id == "" {
			id = httpclient.CorrelationIDFromContext(ctx)
		}
		if id == "" {
			id = req.Headers.Get(headerRequestID)
		}
		if id == "" {
			return next(ctx, req)
		}
		setHeader(req, headerCorrelationID, id)
		return next(httpclient.WithCorrelationID(ctx, id), req)
	}
}

func setHeader(req *request.Request, name, value string) {
	if req.Headers == nil {
		req.Headers = make(map[string][]string)
	}
	req.Headers.Set(name, value)
}
