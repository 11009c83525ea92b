package feedback

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/wardrobe/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, fb *models.Feedback) (*models.Feedback, error) {

	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.UserName == "" {
		fb.UserName = "Anonymous"
	}

	query :=
		`INSERT INTO feedback (id, user_name, message)
		 VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, fb.ID, fb.UserName, fb.Message).Scan(&fb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return fb, nil
}
