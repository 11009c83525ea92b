package feedback

import (
	"context"

	"github.com/avolkov/wardrobe/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, fb *models.Feedback) (*models.Feedback, error)
}
