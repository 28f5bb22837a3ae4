package appMiddleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rastrodeliberdade/rider-platform/internal/api"
)

type contextKey string

// SubjectKey carries the verified token subject (the rider's email) through
// the request context.
const SubjectKey contextKey = "subject"

// TokenVerifier checks a raw token string and returns its subject. Satisfied
// by auth.TokenIssuer; declared here to keep the middleware free of a
// dependency on the auth package.
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// Authenticate extracts the bearer token from the Authorization header,
// verifies it, and adds the subject to the request context. Expired, forged
// and malformed tokens are distinguished in the response message but all
// yield 401.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				http.Error(w, "Authorization header format must be Bearer {token}", http.StatusUnauthorized)
				return
			}

			subject, err := verifier.Verify(headerParts[1])
			if err != nil {
				switch {
				case errors.Is(err, api.ErrTokenExpired):
					http.Error(w, "Token expired", http.StatusUnauthorized)
				case errors.Is(err, api.ErrTokenInvalidSignature):
					http.Error(w, "Invalid token signature", http.StatusUnauthorized)
				default:
					http.Error(w, "Invalid token", http.StatusUnauthorized)
				}
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
