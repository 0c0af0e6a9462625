package middleware

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"genforge/internal/api/response"
)

// Auth validates the operator API key against a bcrypt hash from config.
// An empty hash disables authentication entirely.
type Auth struct {
	keyHash string
}

// NewAuth creates a new Auth middleware.
func NewAuth(keyHash string) *Auth {
	return &Auth{keyHash: keyHash}
}

// Authenticate validates the Bearer token and tags the request with the
// operator identity for rate limiting.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.keyHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized,
				"missing or invalid Authorization header")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(a.keyHash), []byte(rawKey)) != nil {
			response.Error(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r.WithContext(setClientKey(r.Context(), "operator")))
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
