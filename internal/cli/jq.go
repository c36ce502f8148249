package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

const defaultFilterTimeout = time.Second

// Filter is a compiled jq expression applied to response bodies.
type Filter struct {
	expr    string
	code    *gojq.Code
	timeout time.Duration
}

// NewFilter compiles expr. An empty expr yields a nil Filter, which passes
// bodies through unchanged.
func NewFilter(expr string) (*Filter, error) {
	if expr == "" {
		return nil, nil
	}

	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	return &Filter{expr: expr, code: code, timeout: defaultFilterTimeout}, nil
}

// Apply decodes body as JSON and returns every value the expression emits.
func (f *Filter) Apply(ctx context.Context, body []byte) ([]any, error) {
	var input any
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var results []any
	iter := f.code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq %q: %w", f.expr, err)
		}
		results = append(results, v)
	}
	return results, nil
}
