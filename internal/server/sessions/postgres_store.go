package sessions

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

type PostgresStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewPostgresStore(db *sql.DB, ttl time.Duration) (*PostgresStore, error) {
	return &PostgresStore{db: db, ttl: ttl}, nil
}

func (s *PostgresStore) Create(ctx context.Context, user *models.SessionUser) (string, error) {

	id := uuid.NewString()

	query :=
		`INSERT INTO sessions (id, user_id, email, name, username, profile_pic, verified, user_created_at, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), $9)
		 `

	_, err := s.db.ExecContext(ctx, query,
		id, user.ID, user.Email, user.Name, user.Username, user.ProfilePic,
		user.Verified, user.CreatedAt, time.Now().Add(s.ttl))

	if err != nil {
		return "", fmt.Errorf("error performing sql request: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.SessionUser, error) {

	// sliding expiry: reading an active session extends it
	query :=
		`UPDATE sessions SET expires_at = $2
		 WHERE id = $1 AND expires_at > now()
		 RETURNING user_id, email, name, username, profile_pic, verified, user_created_at
		 `

	user := &models.SessionUser{}
	err := s.db.QueryRowContext(ctx, query, id, time.Now().Add(s.ttl)).
		Scan(&user.ID, &user.Email, &user.Name, &user.Username, &user.ProfilePic, &user.Verified, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (s *PostgresStore) Destroy(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *PostgresStore) DestroyAllForEmail(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateSnapshot(ctx context.Context, user *models.SessionUser) error {
	query :=
		`UPDATE sessions SET name = $2, username = $3, profile_pic = $4, verified = $5
		 WHERE user_id = $1
		 `
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Username, user.ProfilePic, user.Verified)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)

// PurgeExpired removes expired session rows. Expired sessions are already
// invisible to Get; this only reclaims space.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return res.RowsAffected()
}
