package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "sid"

// The cookie value is "<session id>.<signature>" so a forged or truncated
// cookie is rejected before any store lookup.

func signSessionID(secret, id string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func encodeSessionCookie(secret, id string) string {
	return id + "." + signSessionID(secret, id)
}

func decodeSessionCookie(secret, value string) (string, bool) {
	i := strings.LastIndex(value, ".")
	if i <= 0 {
		return "", false
	}
	id, sig := value[:i], value[i+1:]
	if !hmac.Equal([]byte(sig), []byte(signSessionID(secret, id))) {
		return "", false
	}
	return id, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encodeSessionCookie(s.cfg.SessionSecret, sessionID),
		Path:     "/",
		Expires:  time.Now().Add(s.cfg.SessionTTL),
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: s.sameSite(),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: s.sameSite(),
	})
}

func (s *Server) sameSite() http.SameSite {
	if s.cfg.Production {
		// frontend and API live on different origins in production
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// sessionIDFromRequest extracts and authenticates the session id carried by
// the cookie. An absent or tampered cookie yields "".
func (s *Server) sessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	id, ok := decodeSessionCookie(s.cfg.SessionSecret, cookie.Value)
	if !ok {
		return ""
	}
	return id
}
