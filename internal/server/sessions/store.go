// Package sessions persists server-side session records keyed by an opaque
// identifier carried in the client's cookie. A session holds a password-free
// user snapshot; bulk invalidation by email backs the password-change,
// password-reset and account-deletion flows.
package sessions

import (
	"context"

	"github.com/avolkov/wardrobe/internal/server/models"
)

type Store interface {
	// Create stores a snapshot and returns the opaque session id.
	Create(ctx context.Context, user *models.SessionUser) (string, error)

	// Get returns the snapshot for an unexpired session and extends its
	// expiry. Absent or expired sessions yield common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.SessionUser, error)

	// Destroy removes a single session. Removing a missing session is not
	// an error.
	Destroy(ctx context.Context, id string) error

	// DestroyAllForEmail removes every session belonging to the user.
	DestroyAllForEmail(ctx context.Context, email string) error

	// UpdateSnapshot rewrites the stored snapshot in every session of the
	// user, so profile edits show up on other devices without re-login.
	UpdateSnapshot(ctx context.Context, user *models.SessionUser) error
}
