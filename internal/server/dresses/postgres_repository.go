package dresses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avolkov/wardrobe/internal/common"
	"github.com/avolkov/wardrobe/internal/server/models"
	"github.com/google/uuid"
)

const selectColumns = `id, name, section, category, image_url, user_email, is_favorite, tags, created_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, dress *models.Dress) (*models.Dress, error) {

	if dress.ID == "" {
		dress.ID = uuid.NewString()
	}

	tags, err := json.Marshal(emptyIfNil(dress.Tags))
	if err != nil {
		return nil, fmt.Errorf("error encoding tags: %w", err)
	}

	query :=
		`INSERT INTO dresses (id, name, section, category, image_url, user_email, is_favorite, tags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, coalesce($9, now()))
		 RETURNING created_at
		 `

	var createdAt sql.NullTime
	if !dress.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: dress.CreatedAt, Valid: true}
	}

	err = r.db.QueryRowContext(ctx, query,
		dress.ID, dress.Name, dress.Section, dress.Category, dress.ImageURL,
		dress.UserEmail, dress.IsFavorite, tags, createdAt).
		Scan(&dress.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return dress, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Dress, error) {
	query := `SELECT ` + selectColumns + ` FROM dresses WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, email string) ([]*models.Dress, error) {
	query := `SELECT ` + selectColumns + ` FROM dresses WHERE user_email = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, email)
}

func (r *PostgresRepository) ListFavourites(ctx context.Context, email string) ([]*models.Dress, error) {
	query := `SELECT ` + selectColumns + ` FROM dresses WHERE user_email = $1 AND is_favorite ORDER BY created_at DESC`
	return r.queryMany(ctx, query, email)
}

func (r *PostgresRepository) ListBySection(ctx context.Context, email string, section string) ([]*models.Dress, error) {
	query := `SELECT ` + selectColumns + ` FROM dresses WHERE user_email = $1 AND section = $2 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, email, section)
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, email string, section string, category string) ([]*models.Dress, error) {
	query := `SELECT ` + selectColumns + ` FROM dresses WHERE user_email = $1 AND section = $2 AND category = $3 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, email, section, category)
}

func (r *PostgresRepository) ListRecent(ctx context.Context, email string, limit int) ([]*models.Dress, error) {
	query := `SELECT ` + selectColumns + ` FROM dresses WHERE user_email = $1 ORDER BY created_at DESC LIMIT $2`
	return r.queryMany(ctx, query, email, limit)
}

func (r *PostgresRepository) Search(ctx context.Context, email string, q string) ([]*models.Dress, error) {
	query :=
		`SELECT ` + selectColumns + ` FROM dresses
		 WHERE user_email = $1
		   AND (name ILIKE $2 OR section ILIKE $2 OR category ILIKE $2)
		 ORDER BY created_at DESC
		 `
	return r.queryMany(ctx, query, email, "%"+q+"%")
}

func (r *PostgresRepository) Update(ctx context.Context, id string, email string, name, section, category string, tags []string) (*models.Dress, error) {

	encoded, err := json.Marshal(emptyIfNil(tags))
	if err != nil {
		return nil, fmt.Errorf("error encoding tags: %w", err)
	}

	query :=
		`UPDATE dresses
		 SET name = $3, section = $4, category = $5, tags = $6
		 WHERE id = $1 AND user_email = $2
		 RETURNING ` + selectColumns

	return r.queryOne(ctx, query, id, email, name, section, category, encoded)
}

func (r *PostgresRepository) ToggleFavourite(ctx context.Context, id string, email string) (bool, error) {

	// flip in place; the database's per-row atomicity makes concurrent
	// toggles safe without a read first
	query :=
		`UPDATE dresses SET is_favorite = NOT is_favorite
		 WHERE id = $1 AND user_email = $2
		 RETURNING is_favorite
		 `

	var favourite bool
	err := r.db.QueryRowContext(ctx, query, id, email).Scan(&favourite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("error performing sql request: %w", err)
	}

	return favourite, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteBySection(ctx context.Context, email string, section string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM dresses WHERE user_email = $1 AND section = $2`, email, section)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByCategory(ctx context.Context, email string, section string, category string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM dresses WHERE user_email = $1 AND section = $2 AND category = $3`, email, section, category)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAllFor(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dresses WHERE user_email = $1`, email)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, email string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM dresses WHERE user_email = $1`, email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Dress, error) {

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error performing sql request: %w", err)
		}
		return nil, common.ErrorNotFound
	}

	return scanDress(rows)
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Dress, error) {

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []*models.Dress
	for rows.Next() {
		dress, err := scanDress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, dress)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return result, nil
}

func scanDress(rows *sql.Rows) (*models.Dress, error) {

	dress := &models.Dress{}
	var tags []byte

	err := rows.Scan(&dress.ID, &dress.Name, &dress.Section, &dress.Category,
		&dress.ImageURL, &dress.UserEmail, &dress.IsFavorite, &tags, &dress.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	if err := json.Unmarshal(tags, &dress.Tags); err != nil {
		return nil, fmt.Errorf("error decoding tags: %w", err)
	}
	if dress.Tags == nil {
		dress.Tags = []string{}
	}

	return dress, nil
}

func emptyIfNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
