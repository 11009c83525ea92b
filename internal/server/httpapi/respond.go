package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/avolkov/wardrobe/internal/common"
)

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), "error encoding response", "error", err)
	}
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps the sentinel taxonomy to HTTP statuses. Internal details
// never reach the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		s.writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrorUnverified):
		s.writeMessage(w, http.StatusUnauthorized, "Email not verified.")
	case errors.Is(err, common.ErrorInvalidCredentials):
		s.writeMessage(w, http.StatusBadRequest, "Invalid password.")
	case errors.Is(err, common.ErrorInvalidToken):
		s.writeMessage(w, http.StatusBadRequest, "Invalid or expired token.")
	case errors.Is(err, common.ErrorValidation):
		s.writeMessage(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, common.ErrorAlreadyExists):
		s.writeMessage(w, http.StatusConflict, "Already exists.")
	case errors.Is(err, common.ErrorForbidden):
		s.writeMessage(w, http.StatusForbidden, "Forbidden.")
	case errors.Is(err, common.ErrorNotFound):
		s.writeMessage(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, common.ErrorUpstream):
		s.logger.Error(r.Context(), "upstream failure", "path", r.URL.Path, "error", err)
		s.writeMessage(w, http.StatusBadGateway, "Upstream service error.")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Server error.")
	}
}

// validationMessage strips the sentinel prefix so the client sees only the
// human-readable part.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := common.ErrorValidation.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return "Invalid request."
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.ErrorValidation
	}
	return nil
}
