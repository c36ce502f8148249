// Package middleware implements the ordered request and response middleware
// stacks and the composition that folds them into a single call chain.
//
// Composition is a right-to-left reduction, so the first entry added is the
// outermost: it runs first on the way in and last on the way out.
//
//	stack.Use(a, middleware.Named("a"))
//	stack.Use(b, middleware.Named("b"))
//	call := middleware.Chain(send, stack.Entries()...)
//
// is equivalent to a(b(send)). Every request middleware must either call next
// or return a response of its own; returning neither is reported as
// apierr.ErrMiddlewareContract.
package middleware

import (
	"context"
	"fmt"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// Next continues a request chain.
type Next func(ctx context.Context, req *request.Request) (*request.Response, error)

// Middleware intercepts a request. It may mutate req before calling next,
// short-circuit by returning a response without calling next, or
// post-process the response returned by next.
type Middleware func(ctx context.Context, req *request.Request, next Next) (*request.Response, error)

// ResponseNext continues a response chain.
type ResponseNext func(ctx context.Context, resp *request.Response) (*request.Response, error)

// ResponseMiddleware intercepts a response received from the transport.
type ResponseMiddleware func(ctx context.Context, resp *request.Response, next ResponseNext) (*request.Response, error)

// Tap observes a copy of an issued request. Taps run in registration order
// and each must call next before returning.
type Tap func(ctx context.Context, req *request.Request, next func())

// ResponseTap observes a copy of a final response together with a copy of
// the request that produced it. The contract matches Tap.
type ResponseTap func(ctx context.Context, resp *request.Response, req *request.Request, next func())

// Chain composes entries around final. Errors returned from next are passed
// through untouched.
func Chain(final Next, entries ...Entry[Middleware]) Next {
	handler := final
	for i := len(entries) - 1; i >= 0; i-- {
		handler = guard(entries[i], handler)
	}
	return handler
}

func guard(e Entry[Middleware], next Next) Next {
	return func(ctx context.Context, req *request.Request) (*request.Response, error) {
		resp, err := e.Fn(ctx, req, next)
		if err == nil && resp == nil {
			return nil, fmt.Errorf("%w: middleware %q returned neither a response nor an error",
				apierr.ErrMiddlewareContract, e.Key)
		}
		return resp, err
	}
}

// ChainResponse composes response entries the same way Chain does. The
// innermost step returns the response it receives.
func ChainResponse(entries ...Entry[ResponseMiddleware]) ResponseNext {
	var handler ResponseNext = func(_ context.Context, resp *request.Response) (*request.Response, error) {
		return resp, nil
	}
	for i := len(entries) - 1; i >= 0; i-- {
		handler = guardResponse(entries[i], handler)
	}
	return handler
}

func guardResponse(e Entry[ResponseMiddleware], next ResponseNext) ResponseNext {
	return func(ctx context.Context, resp *request.Response) (*request.Response, error) {
		out, err := e.Fn(ctx, resp, next)
		if err == nil && out == nil {
			return nil, fmt.Errorf("%w: response middleware %q returned neither a response nor an error",
				apierr.ErrMiddlewareContract, e.Key)
		}
		return out, err
	}
}

// RunTaps invokes taps in order, each with its own copy of req. A tap that
// returns without calling next stops the run with apierr.ErrMiddlewareContract.
func RunTaps(ctx context.Context, req *request.Request, taps ...Entry[Tap]) error {
	return runObservers("request tap", len(taps),
		func(i int) Key { return taps[i].Key },
		func(i int, next func()) { taps[i].Fn(ctx, req.Clone(), next) },
	)
}

// RunResponseTaps invokes response taps in order under the same contract as
// RunTaps. Each tap gets its own copies of resp and req.
func RunResponseTaps(ctx context.Context, resp *request.Response, req *request.Request, taps ...Entry[ResponseTap]) error {
	return runObservers("response tap", len(taps),
		func(i int) Key { return taps[i].Key },
		func(i int, next func()) { taps[i].Fn(ctx, resp.Clone(), req.Clone(), next) },
	)
}

func runObservers(kind string, n int, key func(int) Key, invoke func(i int, next func())) error {
	var run func(i int) error
	run = func(i int) error {
		if i == n {
			return nil
		}

		called := false
		var innerErr error
		invoke(i, func() {
			if called {
				return
			}
			called = true
			innerErr = run(i + 1)
		})

		if !called {
			return fmt.Errorf("%w: %s %q failed to call next() before returning",
				apierr.ErrMiddlewareContract, kind, key(i))
		}
		return innerErr
	}
	return run(0)
}

// Passthrough is the identity middleware.
func Passthrough(ctx context.Context, req *request.Request, next Next) (*request.Response, error) {
	return next(ctx, req)
}
