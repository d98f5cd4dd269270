package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/DhawalShankar/vartalang-sub001/internal/auth"
)

type ctxKey int

const userIDKey ctxKey = iota

// Authenticate verifies the Bearer token on the request and injects the
// acting user's id into the request context. Handlers must take the acting
// identity from the context, never from the request body.
func Authenticate(mgr *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				http.Error(w, `{"error": "missing bearer token"}`, http.StatusUnauthorized)
				return
			}

			userID, _, err := mgr.VerifyToken(strings.TrimPrefix(header, prefix))
			if err != nil {
				http.Error(w, `{"error": "invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the authenticated user id from a request context.
func UserID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(userIDKey).(uint64)
	return id, ok
}

// WithUserID returns a context carrying an acting user id. Used by tests
// to call handlers without going through the middleware.
func WithUserID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
