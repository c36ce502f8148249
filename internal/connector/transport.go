package connector

import (
	"context"
	"net/http"
)

// Transport sends one HTTP request. The default implementation is
// *httpclient.Client; tests substitute a TransportFunc or an httptest server.
type Transport interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *http.Request) (*http.Response, error)

// Do calls f(ctx, req).
func (f TransportFunc) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return f(ctx, req)
}
