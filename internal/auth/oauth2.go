package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/middleware"
	"github.com/jsamuelsen11/maingo/internal/platform/logging"
	"github.com/jsamuelsen11/maingo/internal/platform/telemetry"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// TokenRecord is the result of a token fetch. A zero ExpiresAt means the
// expiry is unknown; if the access token is a JWT its exp claim is used.
type TokenRecord struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenFunc fetches a token. Requests the func sends through c bypass the
// OAuth2 middleware whatever context they carry; ctx is also marked with
// WithAuthorizing. A func must not send through any other reference to the
// authenticated client: such a request waits for the fetch it belongs to.
type TokenFunc func(ctx context.Context, c Client) (TokenRecord, error)

// OAuth2Config configures an OAuth2 adapter.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	GrantType    string
	Scope        string

	// AccessTokenFunc obtains a token when no refresh token is known.
	AccessTokenFunc TokenFunc
	// RefreshTokenFunc exchanges the current refresh token for a new token.
	RefreshTokenFunc TokenFunc

	Logger  *slog.Logger
	Metrics *telemetry.Metrics

	// Now is the clock used for expiry checks. Defaults to time.Now.
	Now func() time.Time
}

type refreshTokenKey struct{}

// RefreshTokenFromContext returns the refresh token the adapter held when it
// started the fetch ctx belongs to, or "".
func RefreshTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(refreshTokenKey{}).(string)
	return v
}

const fetchKey = "token"

// OAuth2 attaches a bearer token obtained through caller-provided token
// funcs. At most one fetch is in flight at a time; concurrent requests that
// find the token expired wait for that fetch and share its result.
type OAuth2 struct {
	cfg    OAuth2Config
	now    func() time.Time
	logger *slog.Logger

	group       singleflight.Group
	authorizing atomic.Bool

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// NewOAuth2 validates cfg and returns the adapter.
func NewOAuth2(cfg OAuth2Config) (*OAuth2, error) {
	cfgErr := &apierr.ConfigError{Component: "auth.oauth2", Fields: map[string]string{}}
	if cfg.ClientID == "" {
		cfgErr.Fields["client_id"] = "must not be empty"
	}
	if cfg.ClientSecret == "" {
		cfgErr.Fields["client_secret"] = "must not be empty"
	}
	if cfg.GrantType == "" {
		cfgErr.Fields["grant_type"] = "must not be empty"
	}
	if cfg.AccessTokenFunc == nil {
		cfgErr.Fields["access_token_func"] = "must not be nil"
	}
	if cfg.RefreshTokenFunc == nil {
		cfgErr.Fields["refresh_token_func"] = "must not be nil"
	}
	if len(cfgErr.Fields) > 0 {
		return nil, cfgErr
	}

	o := &OAuth2{cfg: cfg, now: cfg.Now, logger: cfg.Logger}
	if o.now == nil {
		o.now = time.Now
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	return o, nil
}

// Expired reports whether a new token is needed: there is none, its expiry
// is unknown, or it has passed.
func (o *OAuth2) Expired() bool {
	now := o.now()
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.expiredLocked(now)
}

func (o *OAuth2) expiredLocked(now time.Time) bool {
	return o.accessToken == "" || o.expiresAt.IsZero() || !now.Before(o.expiresAt)
}

// Authorizing reports whether a token fetch is in flight.
func (o *OAuth2) Authorizing() bool {
	return o.authorizing.Load()
}

// Token returns a copy of the current token state.
func (o *OAuth2) Token() TokenRecord {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return TokenRecord{AccessToken: o.accessToken, RefreshToken: o.refreshToken, ExpiresAt: o.expiresAt}
}

// Authentication returns middleware that ensures a valid token and sets
// "Authorization: Bearer <token>". Requests issued by a token func pass
// through untouched.
func (o *OAuth2) Authentication(c Client) middleware.Middleware {
	return func(ctx context.Context, req *request.Request, next middleware.Next) (*request.Response, error) {
		if IsAuthorizing(ctx) {
			return next(ctx, req)
		}

		now := o.now()
		o.mu.RLock()
		token, expired := o.accessToken, o.expiredLocked(now)
		o.mu.RUnlock()

		if expired {
			rec, err := o.getAccessToken(ctx, c, false)
			if err != nil {
				return nil, err
			}
			token = rec.AccessToken
		}

		setAuthorization(req, "Bearer "+token)
		return next(ctx, req)
	}
}

// CheckAuthentication returns response middleware that, on 401 or 403,
// refreshes the token and refires the request once. A failure of the refired
// request is returned as is.
func (o *OAuth2) CheckAuthentication(c Client) middleware.ResponseMiddleware {
	return func(ctx context.Context, resp *request.Response, next middleware.ResponseNext) (*request.Response, error) {
		if IsAuthorizing(ctx) || alreadyRefreshed(ctx) || !isAuthFailure(resp.StatusCode) {
			return next(ctx, resp)
		}

		logging.FromContextOr(ctx, o.logger).InfoContext(ctx, "upstream rejected token, refreshing",
			slog.Int("status", resp.StatusCode),
			slog.String("method", resp.Method),
		)

		if _, err := o.RefreshAccessToken(ctx, c); err != nil {
			return nil, err
		}
		return resp.Refire(withRefreshed(ctx))
	}
}

// RefreshAccessToken fetches a new token regardless of the current expiry,
// joining a fetch already in flight. It never returns the token that was
// current when it was called.
func (o *OAuth2) RefreshAccessToken(ctx context.Context, c Client) (TokenRecord, error) {
	stale := o.invalidate()

	rec, err := o.getAccessToken(ctx, c, true)
	if err == nil && stale != "" && rec.AccessToken == stale {
		// Joined a flight that had already found the stale token valid.
		rec, err = o.getAccessToken(ctx, c, true)
	}
	return rec, err
}

// invalidate marks the current access token expired, so fetches that have
// not run their expiry check yet replace it, and returns it.
func (o *OAuth2) invalidate() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.expiresAt = time.Time{}
	return o.accessToken
}

// getAccessToken joins or starts the single in-flight fetch. The fetch runs
// detached from ctx so one caller giving up does not fail the others; the
// caller itself stops waiting when ctx is done. Unless force is set, a fetch
// that finds a token stored by the previous one returns it unchanged.
func (o *OAuth2) getAccessToken(ctx context.Context, c Client, force bool) (TokenRecord, error) {
	ch := o.group.DoChan(fetchKey, func() (any, error) {
		if !force && !o.Expired() {
			return o.Token(), nil
		}
		return o.fetch(context.WithoutCancel(ctx), c)
	})

	select {
	case <-ctx.Done():
		return TokenRecord{}, fmt.Errorf("%w: waiting for token: %w", apierr.ErrAuth, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return TokenRecord{}, res.Err
		}
		rec, _ := res.Val.(TokenRecord)
		return rec, nil
	}
}

func (o *OAuth2) fetch(ctx context.Context, c Client) (TokenRecord, error) {
	o.authorizing.Store(true)
	defer o.authorizing.Store(false)

	o.mu.RLock()
	refresh := o.refreshToken
	o.mu.RUnlock()

	grant, fn := "access", o.cfg.AccessTokenFunc
	if refresh != "" {
		grant, fn = "refresh", o.cfg.RefreshTokenFunc
	}

	logger := logging.FromContextOr(ctx, o.logger)
	logger.DebugContext(ctx, "fetching oauth2 token", slog.String("grant", grant))

	start := time.Now()
	ctx = context.WithValue(WithAuthorizing(ctx), refreshTokenKey{}, refresh)
	if c != nil {
		c = authorizingClient{c}
	}
	rec, err := fn(ctx, c)
	if err == nil && rec.AccessToken == "" {
		err = errors.New("token func returned an empty access token")
	}
	o.recordFetch(ctx, grant, start, err)

	if err != nil {
		logger.WarnContext(ctx, "oauth2 token fetch failed",
			slog.String("grant", grant),
			slog.Any("error", err),
		)
		if refresh != "" {
			// A rejected refresh token will not get better; start over
			// with the access grant next time.
			o.mu.Lock()
			o.refreshToken = ""
			o.mu.Unlock()
		}
		return TokenRecord{}, fmt.Errorf("%w: %s token func: %w", apierr.ErrAuth, grant, err)
	}

	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = jwtExpiry(rec.AccessToken)
	}

	o.mu.Lock()
	o.accessToken = rec.AccessToken
	o.refreshToken = rec.RefreshToken
	o.expiresAt = rec.ExpiresAt
	o.mu.Unlock()

	logger.DebugContext(ctx, "oauth2 token fetched",
		slog.String("grant", grant),
		slog.Time("expires_at", rec.ExpiresAt),
	)
	return rec, nil
}

func (o *OAuth2) recordFetch(ctx context.Context, grant string, start time.Time, err error) {
	m := o.cfg.Metrics
	if m == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "error"
	}
	attrs := metric.WithAttributes(
		telemetry.AttrGrant.String(grant),
		telemetry.AttrResult.String(result),
	)
	m.TokenFetchTotal.Add(ctx, 1, attrs)
	m.TokenFetchDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}

// authorizingClient marks every request a token func sends as part of the
// fetch.
type authorizingClient struct {
	Client
}

func (a authorizingClient) Request(ctx context.Context, req *request.Request) (*request.Response, error) {
	return a.Client.Request(WithAuthorizing(ctx), req)
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// jwtExpiry reads the exp claim of an unverified JWT. Opaque tokens and
// tokens without exp yield the zero time.
func jwtExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
