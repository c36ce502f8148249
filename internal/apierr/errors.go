// Package apierr defines the error taxonomy shared by the request pipeline,
// the connectors, and the auth adapters. Callers match categories with
// errors.Is against the sentinels and reach for details with errors.As on
// the typed errors.
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrConfig             = errors.New("invalid configuration")
	ErrInvalidURL         = errors.New("invalid URL")
	ErrInvalidParam       = errors.New("invalid search param")
	ErrInvalidHeader      = errors.New("invalid header")
	ErrMiddlewareContract = errors.New("middleware contract violation")
	ErrTransport          = errors.New("transport error")
	ErrAuth               = errors.New("authentication error")
	ErrNoRequest          = errors.New("no request has been sent")
	ErrUnsupportedMethod  = errors.New("method not supported by connector")
)

// ConfigError reports one or more invalid fields found while constructing a
// component. Construction never returns a partially built value alongside it.
type ConfigError struct {
	Component string
	Fields    map[string]string
}

// NewConfigError returns a ConfigError for a single field.
func NewConfigError(component, field, reason string) *ConfigError {
	return &ConfigError{Component: component, Fields: map[string]string{field: reason}}
}

func (e *ConfigError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Component, ErrConfig.Error(), strings.Join(parts, "; "))
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// TransportError wraps a failure of the underlying send primitive.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, ErrTransport.Error(), e.Err)
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// ErrTransport as well as context.Canceled and friends.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}
