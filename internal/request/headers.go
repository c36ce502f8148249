package request

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/spf13/cast"

	"github.com/jsamuelsen11/maingo/internal/apierr"
)

// MergeHeaders folds header tiers into a new header set. Tiers are applied in
// argument order and later tiers replace every value of an earlier tier for
// the same canonical name, so the connector passes them lowest precedence
// first:
//
//	MergeHeaders(persistent, temporary, permanent)
//
// The inputs are never mutated.
func MergeHeaders(tiers ...http.Header) http.Header {
	merged := make(http.Header)
	for _, tier := range tiers {
		for name, values := range tier {
			merged[http.CanonicalHeaderKey(name)] = slices.Clone(values)
		}
	}
	return merged
}

// FromMap converts a single-valued header map (as found in configuration)
// into an http.Header with canonical names.
func FromMap(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for name, value := range m {
		h.Set(name, value)
	}
	return h
}

// HeaderValue converts v to its header string form. Strings, numbers,
// booleans, and fmt.Stringer values are accepted.
func HeaderValue(v any) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: nil value", apierr.ErrInvalidHeader)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: %T is not string-convertible", apierr.ErrInvalidHeader, v)
	}
	return s, nil
}
