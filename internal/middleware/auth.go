package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/eventhub/eventhub-go/internal/crypto"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller. It can only be obtained from a request
// context that passed through JWTAuth.
type Identity struct {
	userID int64
}

// UserID returns the id of the authenticated user.
func (i Identity) UserID() int64 {
	return i.userID
}

// JWTAuth returns middleware that validates a Bearer token from the Authorization header.
// A missing credential is rejected with 401, an unverifiable one with 400.
func JWTAuth(tokens *crypto.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Access Denied")
				return
			}

			scheme, token, _ := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "Access Denied")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "Invalid Token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, Identity{userID: claims.UserID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the authenticated caller from the request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
