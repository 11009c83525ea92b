package db

import (
	"context"
	"database/sql"

	"github.com/avolkov/wardrobe/internal/server/dresses"
	"github.com/avolkov/wardrobe/internal/server/feedback"
	"github.com/avolkov/wardrobe/internal/server/sections"
	"github.com/avolkov/wardrobe/internal/server/sessions"
	"github.com/avolkov/wardrobe/internal/server/tokens"
	"github.com/avolkov/wardrobe/internal/server/users"
)

// RepositoryManager owns the database connection and hands out the
// per-entity repositories built on top of it.
type RepositoryManager interface {
	Conn() *sql.DB
	RunMigrations(ctx context.Context) error
	Close() error

	Users() users.Repository
	Tokens() tokens.Repository
	Sessions() sessions.Store
	Sections() sections.Repository
	Dresses() dresses.Repository
	Feedback() feedback.Repository
}
