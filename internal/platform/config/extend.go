package config

import (
	"fmt"
	"maps"

	"dario.cat/mergo"

	"github.com/jsamuelsen11/maingo/internal/apierr"
)

// Extend derives a client config from base. Non-zero fields of override win;
// header maps are merged key by key with override entries taking precedence.
// Neither argument is modified.
//
//	admin, err := config.Extend(shared, config.ClientConfig{
//	    PermanentHeaders: map[string]string{"X-Scope": "admin"},
//	})
func Extend(base, override ClientConfig) (ClientConfig, error) {
	out := base
	out.Headers = maps.Clone(base.Headers)
	out.PermanentHeaders = maps.Clone(base.PermanentHeaders)

	if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
		return ClientConfig{}, fmt.Errorf("%w: extending client config: %w", apierr.ErrConfig, err)
	}
	out.Headers = maps.Clone(out.Headers)
	out.PermanentHeaders = maps.Clone(out.PermanentHeaders)
	return out, nil
}
