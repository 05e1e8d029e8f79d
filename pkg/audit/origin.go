// Package audit captures the request origin attached to audit ledger
// entries. The ledger records themselves live with the review engine; this
// package only carries (IP, user agent) from the HTTP edge to the engine
// through the request context.
package audit

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// originCtxKey is an unexported type used as the context key for Origin.
type originCtxKey struct{}

// Origin identifies where a request came from.
type Origin struct {
	IPAddress string
	UserAgent string
}

// WithOrigin returns a new context with the given Origin attached.
func WithOrigin(ctx context.Context, origin Origin) context.Context {
	return context.WithValue(ctx, originCtxKey{}, origin)
}

// OriginFromContext retrieves the Origin from the context.
// Returns the zero value when none is set, such as for CLI-driven calls.
func OriginFromContext(ctx context.Context) Origin {
	origin, _ := ctx.Value(originCtxKey{}).(Origin)
	return origin
}

// OriginMiddleware returns HTTP middleware that records the client IP and
// user agent in the request context. X-Forwarded-For wins over RemoteAddr
// since the server normally sits behind a proxy.
func OriginMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := Origin{
				IPAddress: clientIP(r),
				UserAgent: r.UserAgent(),
			}
			next.ServeHTTP(w, r.WithContext(WithOrigin(r.Context(), origin)))
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			forwarded = forwarded[:i]
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
