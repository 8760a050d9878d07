package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"coinladder-api/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

func identityFrom(ctx context.Context) string {
	uid, _ := ctx.Value(identityKey).(string)
	return uid
}

// requireAuth resolves the bearer token before any handler runs and puts
// the resulting uid on the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header || token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized: No token provided.")
			return
		}

		uid, err := s.Verifier.Verify(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				log.Printf("Token verification error: %v", err)
			}
			writeError(w, http.StatusUnauthorized, "Unauthorized: Invalid token.")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, uid)))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
