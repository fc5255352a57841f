package middleware

import (
	"context"
	"net/http"
	"regexp"
)

// SessionHeader names the browser session a request belongs to. The studio
// has no accounts, so the session only scopes runs and rate limits.
const SessionHeader = "X-Session-ID"

// DefaultSession is used when the client sends no session id.
const DefaultSession = "local"

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type sessionKey struct{}

func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if !sessionPattern.MatchString(id) {
			id = DefaultSession
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), id)))
	})
}

func ContextWithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

func SessionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultSession
}
