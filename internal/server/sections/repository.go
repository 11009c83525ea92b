// Package sections stores section records: named groups of category tags,
// either owned by one user or shared defaults (nil owner) visible to all.
package sections

import (
	"context"

	"github.com/avolkov/wardrobe/internal/server/models"
)

type Repository interface {
	// List returns the shared defaults plus the user's own sections,
	// sorted by name.
	List(ctx context.Context, email string) ([]*models.Section, error)

	// Create adds a section owned by the user. common.ErrorAlreadyExists
	// when a section of that name is already visible to the user.
	Create(ctx context.Context, email string, name string) error

	// Insert stores a fully specified section; a nil owner makes it a
	// shared default. Used by seeding and backup restore.
	Insert(ctx context.Context, section *models.Section) error

	// GetVisible returns the section of that name visible to the user,
	// preferring the user's own copy over a shared default.
	GetVisible(ctx context.Context, email string, name string) (*models.Section, error)

	// DeleteOwned removes the user's own section.
	// common.ErrorNotFound when the user owns no section of that name.
	DeleteOwned(ctx context.Context, email string, name string) error

	// AddCategory appends a category to the visible section in one guarded
	// update. common.ErrorNotFound when no section is visible,
	// common.ErrorAlreadyExists when the category is already present.
	AddCategory(ctx context.Context, email string, section string, category string) error

	// RemoveCategory drops a category from the visible section. Removing
	// an absent category is a no-op.
	RemoveCategory(ctx context.Context, email string, section string, category string) error

	DeleteAllFor(ctx context.Context, email string) error

	CountDefaults(ctx context.Context) (int, error)
}
