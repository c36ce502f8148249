package auth_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/auth"
	"github.com/jsamuelsen11/maingo/internal/middleware"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// capture is a terminal Next that records the request it receives.
func capture(got **request.Request) middleware.Next {
	return func(_ context.Context, req *request.Request) (*request.Response, error) {
		*got = req
		return &request.Response{StatusCode: http.StatusOK}, nil
	}
}

func TestBasic_SetsHeader(t *testing.T) {
	t.Parallel()

	a, err := auth.NewBasic("user", "pass")
	require.NoError(t, err)

	var got *request.Request
	_, err = a.Authentication(nil)(context.Background(), request.New("GET", "/x"), capture(&got))
	require.NoError(t, err)

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:pass"))
	assert.Equal(t, want, got.Headers.Get("Authorization"))
}

func TestBasic_OverwritesExistingHeader(t *testing.T) {
	t.Parallel()

	a, err := auth.NewBasic("user", "pass")
	require.NoError(t, err)

	var got *request.Request
	req := request.New("GET", "/x", request.WithHeader("Authorization", "Bearer stale"))
	_, err = a.Authentication(nil)(context.Background(), req, capture(&got))
	require.NoError(t, err)

	assert.Len(t, got.Headers.Values("Authorization"), 1)
	assert.Contains(t, got.Headers.Get("Authorization"), "Basic ")
}

func TestNewBasic_MissingFields(t *testing.T) {
	t.Parallel()

	_, err := auth.NewBasic("", "")
	require.ErrorIs(t, err, apierr.ErrConfig)

	var cfgErr *apierr.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "auth.basic", cfgErr.Component)
	assert.Contains(t, cfgErr.Fields, "id")
	assert.Contains(t, cfgErr.Fields, "secret")
}

func TestBearer(t *testing.T) {
	t.Parallel()

	a, err := auth.NewBearer("abc123")
	require.NoError(t, err)

	var got *request.Request
	_, err = a.Authentication(nil)(context.Background(), request.New("GET", "/x"), capture(&got))
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", got.Headers.Get("Authorization"))

	_, err = auth.NewBearer("")
	assert.ErrorIs(t, err, apierr.ErrConfig)
}

func TestNone(t *testing.T) {
	t.Parallel()

	var got *request.Request
	_, err := auth.None{}.Authentication(nil)(context.Background(), request.New("GET", "/x"), capture(&got))
	require.NoError(t, err)
	assert.Empty(t, got.Headers.Get("Authorization"))
}

func TestCheck_PassThroughForNonChecker(t *testing.T) {
	t.Parallel()

	resp := &request.Response{StatusCode: http.StatusUnauthorized}
	out, err := auth.Check(auth.None{}, nil)(context.Background(), resp,
		func(_ context.Context, r *request.Response) (*request.Response, error) { return r, nil })

	require.NoError(t, err)
	assert.Same(t, resp, out)
}

func TestAuthorizingContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.False(t, auth.IsAuthorizing(ctx))
	assert.True(t, auth.IsAuthorizing(auth.WithAuthorizing(ctx)))
}
