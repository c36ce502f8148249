package logging

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/m-mizutani/masq"
)

// SensitiveHeaders is the set of HTTP header names (lowercase) that carry
// credentials. Shared by the masq handler and middleware.RedactHeaders.
var SensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"x-api-key":           true,
	"cookie":              true,
	"set-cookie":          true,
}

// sensitiveFields are attribute keys that hold OAuth2 and Basic credentials.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"client_secret",
	"access_token",
	"refresh_token",
	"id_token",
}

// SensitiveQueryParams are query parameter names whose values SanitizeURL
// masks.
var SensitiveQueryParams = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"client_secret": true,
	"api_key":       true,
	"apikey":        true,
	"token":         true,
}

var bearerPattern = regexp.MustCompile(`(?i)(bearer|basic)\s+[a-zA-Z0-9\-._~+/]+=*`)

// jwtPattern requires 10+ characters per segment so version strings do not
// match.
var jwtPattern = regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`)

var apiKeyInlinePattern = regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`)

// newRedactAttr returns a masq-powered ReplaceAttr function for use in
// slog.HandlerOptions.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(SensitiveHeaders)+len(sensitiveFields)+5)

	for name := range SensitiveHeaders {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, name := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	opts = append(opts,
		masq.WithFieldPrefix("secret_"),
		masq.WithFieldPrefix("api_key"),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(apiKeyInlinePattern),
	)

	return masq.New(opts...)
}

// SanitizeURL renders u for logging: user info is dropped and the values of
// SensitiveQueryParams are replaced with "[REDACTED]". A nil URL yields "".
func SanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	clean := *u
	clean.User = nil

	if clean.RawQuery != "" {
		q := clean.Query()
		changed := false
		for name := range q {
			if SensitiveQueryParams[strings.ToLower(name)] {
				q.Set(name, "[REDACTED]")
				changed = true
			}
		}
		if changed {
			clean.RawQuery = q.Encode()
		}
	}

	return clean.String()
}
