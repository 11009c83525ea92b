package users

import (
	"context"

	"github.com/avolkov/wardrobe/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateName(ctx context.Context, id string, name string) error
	UpdateUsername(ctx context.Context, id string, username string) error
	UpdateProfilePic(ctx context.Context, id string, url string) error
	Delete(ctx context.Context, id string) error
}
