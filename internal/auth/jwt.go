package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims Tilly cares about. Token issuance is the
// identity provider's job; this side only verifies and reads.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// ParseToken verifies an HS256 access token and returns the actor it
// identifies.
func ParseToken(tokenString string, secret []byte) (Actor, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return secret, nil
	})
	if err != nil {
		return Actor{}, fmt.Errorf("parsing token: %w", err)
	}

	if !token.Valid {
		return Actor{}, jwt.ErrTokenUnverifiable
	}

	return Actor{
		ID:   claims.Subject,
		Name: claims.Name,
		Role: claims.Role,
	}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// actor in the request context for the handlers and the role provider.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			actor, err := ParseToken(tokenString, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
