package dresses

import (
	"context"

	"github.com/avolkov/wardrobe/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, dress *models.Dress) (*models.Dress, error)
	GetByID(ctx context.Context, id string) (*models.Dress, error)

	// ListByUser returns the user's dresses, newest first.
	ListByUser(ctx context.Context, email string) ([]*models.Dress, error)
	ListFavourites(ctx context.Context, email string) ([]*models.Dress, error)
	ListBySection(ctx context.Context, email string, section string) ([]*models.Dress, error)
	ListByCategory(ctx context.Context, email string, section string, category string) ([]*models.Dress, error)
	ListRecent(ctx context.Context, email string, limit int) ([]*models.Dress, error)

	// Search matches name, section or category case-insensitively.
	Search(ctx context.Context, email string, query string) ([]*models.Dress, error)

	// Update rewrites the editable fields of a dress owned by the user.
	Update(ctx context.Context, id string, email string, name, section, category string, tags []string) (*models.Dress, error)

	// ToggleFavourite flips the favourite flag in a single statement and
	// returns the new value.
	ToggleFavourite(ctx context.Context, id string, email string) (bool, error)

	Delete(ctx context.Context, id string) error
	DeleteBySection(ctx context.Context, email string, section string) error
	DeleteByCategory(ctx context.Context, email string, section string, category string) error
	DeleteAllFor(ctx context.Context, email string) error

	CountByUser(ctx context.Context, email string) (int, error)
}
