package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/wardrobe/internal/common"
	"github.com/avolkov/wardrobe/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Put(ctx context.Context, userID string, purpose string, tokenHash string, validity time.Duration) error {

	// the unique (user_id, purpose) index makes the supersede atomic
	query :=
		`INSERT INTO tokens (id, user_id, purpose, token_hash, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, now(), $5)
		 ON CONFLICT (user_id, purpose)
		 DO UPDATE SET id = excluded.id, token_hash = excluded.token_hash,
		               created_at = excluded.created_at, expires_at = excluded.expires_at
		 `

	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), userID, purpose, tokenHash, time.Now().Add(validity))

	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, userID string, purpose string) (*models.Token, error) {

	query :=
		`SELECT id, user_id, purpose, token_hash, created_at, expires_at
		 FROM tokens
		 WHERE user_id = $1 AND purpose = $2 AND expires_at > now()
		 `

	token := &models.Token{}
	err := r.db.QueryRowContext(ctx, query, userID, purpose).
		Scan(&token.ID, &token.UserID, &token.Purpose, &token.TokenHash, &token.CreatedAt, &token.ExpiresAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return token, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAllFor(ctx context.Context, userID string, purpose string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE user_id = $1 AND purpose = $2`, userID, purpose)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return res.RowsAffected()
}
