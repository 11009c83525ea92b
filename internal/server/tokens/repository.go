// Package tokens persists single-purpose, time-limited secrets (email
// verification and password reset). Only bcrypt hashes of raw token values
// are stored; a token is live until it is consumed or its TTL elapses.
package tokens

import (
	"context"
	"time"

	"github.com/avolkov/wardrobe/internal/server/models"
)

type Repository interface {
	// Put stores a hashed token for (userID, purpose), superseding any
	// outstanding token with the same purpose.
	Put(ctx context.Context, userID string, purpose string, tokenHash string, validity time.Duration) error

	// FindActive returns the unexpired token for (userID, purpose), or
	// common.ErrorNotFound when none exists.
	FindActive(ctx context.Context, userID string, purpose string) (*models.Token, error)

	DeleteByID(ctx context.Context, id string) error
	DeleteAllFor(ctx context.Context, userID string, purpose string) error

	// PurgeExpired removes expired rows and reports how many were dropped.
	PurgeExpired(ctx context.Context) (int64, error)
}
