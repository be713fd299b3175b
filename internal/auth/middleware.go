package auth

import (
	"net/http"
	"strings"

	"github.com/taskpilot/taskpilot/pkg/cerr"
)

// Middleware validates the bearer token and injects the authenticated user
// ID into the request context. Requests without a valid token are rejected
// before reaching any handler.
func (i *TokenIssuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if strings.HasPrefix(token, "Bearer ") {
			token = token[len("Bearer "):]
		}
		if token == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		userID, err := i.Verify(token)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
	})
}

// RequireUser is a helper for handlers that must know who is calling.
func RequireUser(r *http.Request) (string, error) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		return "", cerr.NewError(cerr.Unauthenticated, "authentication required", nil)
	}
	return userID, nil
}
