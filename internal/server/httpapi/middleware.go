package httpapi

import (
	"context"
	"net/http"

	"github.com/avolkov/wardrobe/internal/common"
	"github.com/avolkov/wardrobe/internal/server/models"
)

type contextKey int

const sessionUserKey contextKey = iota

// requireAuth resolves the signed cookie to a stored session and puts the
// snapshot into the request context. Resolving a session also slides its
// expiry.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := s.sessionIDFromRequest(r)
		if sid == "" {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		user, err := s.sessions.Get(r.Context(), sid)
		if err != nil {
			s.clearSessionCookie(w)
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionUser(r *http.Request) *models.SessionUser {
	user, _ := r.Context().Value(sessionUserKey).(*models.SessionUser)
	return user
}

// cors allows the configured frontend origin with credentials. The origin is
// a single fixed value, so no allowlist machinery is needed.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.ClientURL != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientURL)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
