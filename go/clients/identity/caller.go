package identity

import (
	"context"
	"net/http"
)

type contextKey string

const callerIDKey contextKey = "caller_id"

// CallerHeader carries the authenticated caller's opaque member id.
// Validation of that id happens upstream at the identity provider's edge.
const CallerHeader = "X-Member-ID"

// CallerMiddleware copies the caller id from the request header into the
// context. Requests without one pass through unauthenticated; handlers that
// require a caller reject them.
func CallerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if memberID := r.Header.Get(CallerHeader); memberID != "" {
			r = r.WithContext(WithCallerID(r.Context(), memberID))
		}
		next.ServeHTTP(w, r)
	})
}

// WithCallerID returns a context carrying the caller's member id
func WithCallerID(ctx context.Context, memberID string) context.Context {
	return context.WithValue(ctx, callerIDKey, memberID)
}

// CallerID extracts the caller's member id from the context
func CallerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerIDKey).(string)
	return id, ok && id != ""
}
