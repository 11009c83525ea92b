package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/avolkov/wardrobe/internal/common"
	"github.com/avolkov/wardrobe/internal/server/media"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.auth.Register(r.Context(), req.Email, req.Password, req.Name, req.Username); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.writeMessage(w, http.StatusConflict, "User already exists.")
			return
		}
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusCreated, "Registered successfully! Please check your email for verification.")
}

// handleVerifyRedirect serves the link embedded in the verification email and
// bounces the browser to the frontend result page.
func (s *Server) handleVerifyRedirect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	id := r.URL.Query().Get("id")

	status := "success"
	if err := s.auth.Verify(r.Context(), id, token); err != nil {
		status = "invalid"
	}

	http.Redirect(w, r, "/verify.html?status="+url.QueryEscape(status), http.StatusFound)
}

// handleVerifyEmail is the JSON variant of verification, used by the SPA.
func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	id := r.URL.Query().Get("id")

	if err := s.auth.Verify(r.Context(), id, token); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "Email verified successfully!")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, sid, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// unknown email is reported as a client error here, not 404
		if errors.Is(err, common.ErrorNotFound) {
			s.writeMessage(w, http.StatusBadRequest, "User not found.")
			return
		}
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, sid)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful!",
		"user":    user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), s.sessionIDFromRequest(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.clearSessionCookie(w)
	s.writeMessage(w, http.StatusOK, "Logged out.")
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.writeMessage(w, http.StatusBadRequest, "User not found.")
			return
		}
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "Password reset link sent! Check your email.")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string `json:"id"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.auth.ResetPassword(r.Context(), req.ID, req.Token, req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}

	// every session of the user is gone now, so the cookie is stale
	s.clearSessionCookie(w)
	s.writeMessage(w, http.StatusOK, "Password reset successful.")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := sessionUser(r)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"name":       user.Name,
		"username":   user.Username,
		"email":      user.Email,
		"verified":   user.Verified,
		"profilePic": user.ProfilePic,
		"joined":     user.CreatedAt,
	})
}

func (s *Server) handleUpdateName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.auth.UpdateName(r.Context(), sessionUser(r).ID, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Name updated.",
		"user":    user,
	})
}

func (s *Server) handleUpdateUsername(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.auth.UpdateUsername(r.Context(), sessionUser(r).ID, req.Username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Username updated.",
		"user":    user,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.auth.ChangePassword(r.Context(), sessionUser(r).ID, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.clearSessionCookie(w)
	s.writeMessage(w, http.StatusOK, "Password changed. Please log in again.")
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.ResendVerification(r.Context(), sessionUser(r).ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "Verification email sent.")
}

func (s *Server) handleUploadProfilePic(w http.ResponseWriter, r *http.Request) {
	body, size, contentType, err := imageFromRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer body.Close()

	url, err := s.auth.UploadProfilePic(r.Context(), sessionUser(r).ID, body, size, contentType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile picture updated.",
		"url":     url,
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.DeleteAccount(r.Context(), sessionUser(r).ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.clearSessionCookie(w)
	s.writeMessage(w, http.StatusOK, "Account deleted.")
}

// imageFromRequest pulls the uploaded "image" part out of a size-capped
// multipart body.
func imageFromRequest(w http.ResponseWriter, r *http.Request) (multipartFile, int64, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
		return nil, 0, "", fmt.Errorf("%w: could not parse upload", common.ErrorValidation)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, 0, "", fmt.Errorf("%w: no image uploaded", common.ErrorValidation)
	}

	return file, header.Size, header.Header.Get("Content-Type"), nil
}

type multipartFile interface {
	Read(p []byte) (int, error)
	Close() error
}
