package auth

import (
	"net/http"
	"strings"
)

// Middleware returns HTTP middleware that verifies the Authorization
// bearer token and attaches the caller identity to the request context.
// Requests without a valid token get 401.
func Middleware(v *Verifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			id, err := v.VerifyToken(token)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			next(w, r.WithContext(WithIdentity(r.Context(), id)))
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
