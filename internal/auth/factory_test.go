package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/auth"
	"github.com/jsamuelsen11/maingo/internal/platform/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	oauth := config.OAuth2Config{
		ClientID:     "id",
		ClientSecret: "secret",
		GrantType:    auth.GrantClientCredentials,
		TokenURL:     "https://auth.example.com/token",
	}
	noop := func(context.Context, auth.Client) (auth.TokenRecord, error) { return auth.TokenRecord{}, nil }

	tests := []struct {
		name    string
		cfg     config.AuthConfig
		opts    []auth.Option
		want    any
		wantErr bool
	}{
		{name: "empty type is none", cfg: config.AuthConfig{}, want: auth.None{}},
		{name: "none", cfg: config.AuthConfig{Type: config.AuthNone}, want: auth.None{}},
		{
			name: "basic",
			cfg:  config.AuthConfig{Type: config.AuthBasic, Basic: config.BasicConfig{ID: "u", Secret: "p"}},
			want: &auth.Basic{},
		},
		{name: "basic missing secret", cfg: config.AuthConfig{Type: config.AuthBasic, Basic: config.BasicConfig{ID: "u"}}, wantErr: true},
		{
			name: "bearer",
			cfg:  config.AuthConfig{Type: config.AuthBearer, Bearer: config.BearerConfig{Token: "t"}},
			want: &auth.Bearer{},
		},
		{name: "oauth2 client credentials", cfg: config.AuthConfig{Type: config.AuthOAuth2, OAuth2: oauth}, want: &auth.OAuth2{}},
		{
			name:    "oauth2 without token url",
			cfg:     config.AuthConfig{Type: config.AuthOAuth2, OAuth2: withTokenURL(oauth, "")},
			wantErr: true,
		},
		{
			name:    "oauth2 unknown grant without funcs",
			cfg:     config.AuthConfig{Type: config.AuthOAuth2, OAuth2: withGrant(oauth, "password")},
			wantErr: true,
		},
		{
			name: "oauth2 custom funcs need no token url",
			cfg:  config.AuthConfig{Type: config.AuthOAuth2, OAuth2: withGrant(withTokenURL(oauth, ""), "password")},
			opts: []auth.Option{auth.WithTokenFuncs(noop, noop)},
			want: &auth.OAuth2{},
		},
		{name: "unknown type", cfg: config.AuthConfig{Type: "digest"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := auth.New(tt.cfg, tt.opts...)
			if tt.wantErr {
				require.ErrorIs(t, err, apierr.ErrConfig)
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, a)
		})
	}
}

func withTokenURL(cfg config.OAuth2Config, u string) config.OAuth2Config {
	cfg.TokenURL = u
	return cfg
}

func withGrant(cfg config.OAuth2Config, grant string) config.OAuth2Config {
	cfg.GrantType = grant
	return cfg
}
