package apierr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jsamuelsen11/maingo/internal/apierr"
)

func TestConfigError_Is(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("building adapter: %w", apierr.NewConfigError("basic auth", "secret", "must not be empty"))

	if !errors.Is(err, apierr.ErrConfig) {
		t.Errorf("errors.Is(err, ErrConfig) = false, want true")
	}

	var cfgErr *apierr.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatal("errors.As(err, *ConfigError) = false, want true")
	}
	if cfgErr.Fields["secret"] != "must not be empty" {
		t.Errorf("Fields[secret] = %q, want %q", cfgErr.Fields["secret"], "must not be empty")
	}
}

func TestTransportError_UnwrapsSentinelAndCause(t *testing.T) {
	t.Parallel()

	err := &apierr.TransportError{Method: "GET", URL: "https://api.example.com/x", Err: context.Canceled}

	if !errors.Is(err, apierr.ErrTransport) {
		t.Error("errors.Is(err, ErrTransport) = false, want true")
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("errors.Is(err, context.Canceled) = false, want true")
	}
	if errors.Is(err, apierr.ErrAuth) {
		t.Error("errors.Is(err, ErrAuth) = true, want false")
	}
}
