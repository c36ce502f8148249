package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jsamuelsen11/maingo/internal/platform/config"
)

// Grant types with ready-made token funcs.
const (
	GrantClientCredentials = "client_credentials"
	GrantRefreshToken      = "refresh_token"
)

// ClientCredentials returns a TokenFunc performing the client_credentials
// grant against cfg.TokenURL. hc, when non-nil, is used for the token call.
func ClientCredentials(cfg config.OAuth2Config, hc *http.Client) TokenFunc {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       strings.Fields(cfg.Scope),
	}

	return func(ctx context.Context, _ Client) (TokenRecord, error) {
		tok, err := cc.Token(withHTTPClient(ctx, hc))
		if err != nil {
			return TokenRecord{}, fmt.Errorf("client credentials grant: %w", err)
		}
		return fromOAuth2(tok), nil
	}
}

// RefreshTokenGrant returns a TokenFunc performing the refresh_token grant.
// It exchanges the refresh token the adapter currently holds, falling back to
// cfg.RefreshToken for the first fetch.
func RefreshTokenGrant(cfg config.OAuth2Config, hc *http.Client) TokenFunc {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		Scopes:       strings.Fields(cfg.Scope),
	}

	return func(ctx context.Context, _ Client) (TokenRecord, error) {
		refresh := RefreshTokenFromContext(ctx)
		if refresh == "" {
			refresh = cfg.RefreshToken
		}
		if refresh == "" {
			return TokenRecord{}, errors.New("refresh token grant: no refresh token available")
		}

		tok, err := oc.TokenSource(withHTTPClient(ctx, hc), &oauth2.Token{RefreshToken: refresh}).Token()
		if err != nil {
			return TokenRecord{}, fmt.Errorf("refresh token grant: %w", err)
		}
		return fromOAuth2(tok), nil
	}
}

func withHTTPClient(ctx context.Context, hc *http.Client) context.Context {
	if hc == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, hc)
}

func fromOAuth2(tok *oauth2.Token) TokenRecord {
	return TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
}
