// Package auth mediates the identity lifecycle: registration, email
// verification, login/logout, password change/reset and account deletion.
// Verification and reset secrets follow one discipline: the raw value is
// mailed once, only its bcrypt hash is stored, and the record is deleted on
// first successful use or when its TTL elapses.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/wardrobe/internal/common"
	"github.com/avolkov/wardrobe/internal/logging"
	"github.com/avolkov/wardrobe/internal/server/config"
	"github.com/avolkov/wardrobe/internal/server/dresses"
	"github.com/avolkov/wardrobe/internal/server/mail"
	"github.com/avolkov/wardrobe/internal/server/media"
	"github.com/avolkov/wardrobe/internal/server/models"
	"github.com/avolkov/wardrobe/internal/server/sections"
	"github.com/avolkov/wardrobe/internal/server/sessions"
	"github.com/avolkov/wardrobe/internal/server/tokens"
	"github.com/avolkov/wardrobe/internal/server/users"
)

const (
	bcryptCost    = 10
	tokenRawBytes = 32
	mailTimeout   = 15 * time.Second
)

type Service struct {
	users    users.Repository
	tokens   tokens.Repository
	sessions sessions.Store
	dresses  dresses.Repository
	sections sections.Repository
	media    media.Storage
	mailer   mail.Mailer
	logger   logging.Logger

	clientURL string
	tokenTTL  time.Duration
}

func NewService(
	userRepo users.Repository,
	tokenRepo tokens.Repository,
	sessionStore sessions.Store,
	dressRepo dresses.Repository,
	sectionRepo sections.Repository,
	mediaStorage media.Storage,
	mailer mail.Mailer,
	logger logging.Logger,
	cfg *config.Config,
) *Service {
	return &Service{
		users:     userRepo,
		tokens:    tokenRepo,
		sessions:  sessionStore,
		dresses:   dressRepo,
		sections:  sectionRepo,
		media:     mediaStorage,
		mailer:    mailer,
		logger:    logger,
		clientURL: cfg.ClientURL,
		tokenTTL:  cfg.TokenTTL,
	}
}

// Register creates an unverified user and mails a verification link.
// Registration succeeds even if the mail cannot be delivered; delivery
// failures are logged only.
func (s *Service) Register(ctx context.Context, email, password, name, username string) (*models.User, error) {

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Username:     strings.TrimSpace(username),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	raw, err := s.issueToken(ctx, user.ID, models.TokenPurposeVerify)
	if err != nil {
		return nil, err
	}

	s.dispatchMail(mail.VerificationMessage(user.Email, s.clientURL, raw, user.ID))

	return user, nil
}

// Verify consumes a verification token. A mismatched raw value leaves the
// stored token in place so the user can retry with the correct link; a
// successful match marks the user verified and deletes the token.
func (s *Service) Verify(ctx context.Context, userID, rawToken string) error {

	if userID == "" || rawToken == "" {
		return fmt.Errorf("%w: missing fields", common.ErrorValidation)
	}

	token, err := s.tokens.FindActive(ctx, userID, models.TokenPurposeVerify)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInvalidToken
		}
		return fmt.Errorf("error looking up token: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(token.TokenHash), []byte(rawToken)) != nil {
		return common.ErrorInvalidToken
	}

	if err := s.users.SetVerified(ctx, userID); err != nil {
		return fmt.Errorf("error marking user verified: %w", err)
	}

	if err := s.tokens.DeleteByID(ctx, token.ID); err != nil {
		return fmt.Errorf("error deleting token: %w", err)
	}

	return nil
}

// Login checks credentials and establishes a session holding a password-free
// snapshot of the user.
func (s *Service) Login(ctx context.Context, email, password string) (*models.SessionUser, string, error) {

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorNotFound
		}
		return nil, "", fmt.Errorf("error looking up user: %w", err)
	}

	if !user.Verified {
		return nil, "", common.ErrorUnverified
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", common.ErrorInvalidCredentials
	}

	snapshot := Snapshot(user)

	sessionID, err := s.sessions.Create(ctx, snapshot)
	if err != nil {
		return nil, "", fmt.Errorf("error creating session: %w", err)
	}

	return snapshot, sessionID, nil
}

// Logout destroys the session. Logging out without one is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, sessionID)
}

// ForgotPassword issues a reset token and mails the link. Unknown emails are
// reported as not found, matching the established client contract.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {

	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email required", common.ErrorValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	raw, err := s.issueToken(ctx, user.ID, models.TokenPurposeReset)
	if err != nil {
		return err
	}

	s.dispatchMail(mail.ResetMessage(user.Email, s.clientURL, raw, user.ID))

	return nil
}

// ResetPassword consumes a reset token, stores the new password hash and
// invalidates every session of the user, including the one making the
// request, if any.
func (s *Service) ResetPassword(ctx context.Context, userID, rawToken, newPassword string) error {

	if userID == "" || rawToken == "" || newPassword == "" {
		return fmt.Errorf("%w: missing fields", common.ErrorValidation)
	}

	token, err := s.tokens.FindActive(ctx, userID, models.TokenPurposeReset)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInvalidToken
		}
		return fmt.Errorf("error looking up token: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(token.TokenHash), []byte(rawToken)) != nil {
		return common.ErrorInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	if err := s.tokens.DeleteByID(ctx, token.ID); err != nil {
		return fmt.Errorf("error deleting token: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error looking up user: %w", err)
	}

	if err := s.sessions.DestroyAllForEmail(ctx, user.Email); err != nil {
		s.logger.Warn(ctx, "could not remove sessions after password reset", "error", err)
	}

	return nil
}

// ChangePassword verifies the current password, stores the new hash and
// drops every session of the user. Re-login is required.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {

	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: both passwords required", common.ErrorValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return common.ErrorInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	if err := s.sessions.DestroyAllForEmail(ctx, user.Email); err != nil {
		s.logger.Warn(ctx, "could not remove sessions after password change", "error", err)
	}

	return nil
}

// ResendVerification reissues the verification token for a logged-in but
// unverified user.
func (s *Service) ResendVerification(ctx context.Context, userID string) error {

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	if user.Verified {
		return fmt.Errorf("%w: already verified", common.ErrorValidation)
	}

	raw, err := s.issueToken(ctx, user.ID, models.TokenPurposeVerify)
	if err != nil {
		return err
	}

	s.dispatchMail(mail.VerificationMessage(user.Email, s.clientURL, raw, user.ID))

	return nil
}

// UpdateName changes the display name and refreshes the stored session
// snapshots.
func (s *Service) UpdateName(ctx context.Context, userID, name string) (*models.SessionUser, error) {

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", common.ErrorValidation)
	}

	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		return nil, fmt.Errorf("error updating name: %w", err)
	}

	return s.refreshSnapshot(ctx, userID)
}

// UpdateUsername changes the handle and refreshes the stored session
// snapshots.
func (s *Service) UpdateUsername(ctx context.Context, userID, username string) (*models.SessionUser, error) {

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", common.ErrorValidation)
	}

	if err := s.users.UpdateUsername(ctx, userID, username); err != nil {
		return nil, fmt.Errorf("error updating username: %w", err)
	}

	return s.refreshSnapshot(ctx, userID)
}

// UploadProfilePic relays the image to object storage and records its URL.
func (s *Service) UploadProfilePic(ctx context.Context, userID string, body io.Reader, size int64, contentType string) (string, error) {

	url, err := s.media.Upload(ctx, body, size, contentType)
	if err != nil {
		return "", err
	}

	if err := s.users.UpdateProfilePic(ctx, userID, url); err != nil {
		return "", fmt.Errorf("error updating profile picture: %w", err)
	}

	if _, err := s.refreshSnapshot(ctx, userID); err != nil {
		s.logger.Warn(ctx, "could not refresh session snapshot", "error", err)
	}

	return url, nil
}

// DeleteAccount removes the user with every owned resource. Hosted image
// cleanup is best-effort: failures are logged and do not abort the deletion.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	owned, err := s.dresses.ListByUser(ctx, user.Email)
	if err != nil {
		s.logger.Warn(ctx, "could not list dresses for image cleanup", "error", err)
	}
	for _, d := range owned {
		if d.ImageURL == "" {
			continue
		}
		if err := s.media.Delete(ctx, d.ImageURL); err != nil {
			s.logger.Warn(ctx, "could not delete hosted image", "url", d.ImageURL, "error", err)
		}
	}

	if err := s.dresses.DeleteAllFor(ctx, user.Email); err != nil {
		return fmt.Errorf("error deleting dresses: %w", err)
	}

	if err := s.sections.DeleteAllFor(ctx, user.Email); err != nil {
		return fmt.Errorf("error deleting sections: %w", err)
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	if err := s.sessions.DestroyAllForEmail(ctx, user.Email); err != nil {
		s.logger.Warn(ctx, "could not remove sessions after account deletion", "error", err)
	}

	return nil
}

// Snapshot builds the password-free session view of a user.
func Snapshot(user *models.User) *models.SessionUser {
	return &models.SessionUser{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Username:   user.Username,
		ProfilePic: user.ProfilePic,
		Verified:   user.Verified,
		CreatedAt:  user.CreatedAt,
	}
}

func (s *Service) issueToken(ctx context.Context, userID, purpose string) (string, error) {

	raw, err := common.MakeRandHexString(tokenRawBytes)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("error hashing token: %w", err)
	}

	if err := s.tokens.Put(ctx, userID, purpose, string(hash), s.tokenTTL); err != nil {
		return "", fmt.Errorf("error storing token: %w", err)
	}

	return raw, nil
}

// dispatchMail sends in the background so the caller's response never waits
// on the mail provider. Failures are logged, not surfaced.
func (s *Service) dispatchMail(msg mail.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.Error(ctx, "email delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
		}
	}()
}

func (s *Service) refreshSnapshot(ctx context.Context, userID string) (*models.SessionUser, error) {

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	snapshot := Snapshot(user)

	if err := s.sessions.UpdateSnapshot(ctx, snapshot); err != nil {
		s.logger.Warn(ctx, "could not refresh session snapshot", "error", err)
	}

	return snapshot, nil
}
