package sections

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

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) List(ctx context.Context, email string) ([]*models.Section, error) {

	query :=
		`SELECT id, name, categories, user_email
		 FROM sections
		 WHERE user_email IS NULL OR user_email = $1
		 ORDER BY name
		 `

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []*models.Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, section)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, email string, name string) error {

	// conditional insert so the duplicate check and the write are one
	// atomic statement
	query :=
		`INSERT INTO sections (id, name, categories, user_email)
		 SELECT $1, $2, '[]'::jsonb, $3
		 WHERE NOT EXISTS (
		     SELECT 1 FROM sections
		     WHERE name = $2 AND (user_email IS NULL OR user_email = $3)
		 )
		 `

	res, err := r.db.ExecContext(ctx, query, uuid.NewString(), name, email)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if affected == 0 {
		return common.ErrorAlreadyExists
	}

	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, section *models.Section) error {

	if section.ID == "" {
		section.ID = uuid.NewString()
	}

	categories, err := json.Marshal(emptyIfNil(section.Categories))
	if err != nil {
		return fmt.Errorf("error encoding categories: %w", err)
	}

	query :=
		`INSERT INTO sections (id, name, categories, user_email)
		 VALUES ($1, $2, $3, $4)
		 `

	_, err = r.db.ExecContext(ctx, query, section.ID, section.Name, categories, section.UserEmail)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetVisible(ctx context.Context, email string, name string) (*models.Section, error) {

	query :=
		`SELECT id, name, categories, user_email
		 FROM sections
		 WHERE name = $1 AND (user_email IS NULL OR user_email = $2)
		 ORDER BY user_email NULLS LAST
		 LIMIT 1
		 `

	rows, err := r.db.QueryContext(ctx, query, name, email)
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

	return scanSection(rows)
}

func (r *PostgresRepository) DeleteOwned(ctx context.Context, email string, name string) error {

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sections WHERE name = $1 AND user_email = $2`, name, email)
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

func (r *PostgresRepository) AddCategory(ctx context.Context, email string, section string, category string) error {

	// single guarded update instead of read-check-write, so concurrent
	// requests cannot append the same category twice
	query :=
		`UPDATE sections
		 SET categories = categories || to_jsonb($3::text)
		 WHERE id = (
		     SELECT id FROM sections
		     WHERE name = $1 AND (user_email IS NULL OR user_email = $2)
		     ORDER BY user_email NULLS LAST
		     LIMIT 1
		 )
		 AND NOT (categories ? $3)
		 `

	res, err := r.db.ExecContext(ctx, query, section, email, category)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if affected == 0 {
		// either no visible section or the category already exists
		if _, err := r.GetVisible(ctx, email, section); err != nil {
			return err
		}
		return common.ErrorAlreadyExists
	}

	return nil
}

func (r *PostgresRepository) RemoveCategory(ctx context.Context, email string, section string, category string) error {

	query :=
		`UPDATE sections
		 SET categories = categories - $3
		 WHERE id = (
		     SELECT id FROM sections
		     WHERE name = $1 AND (user_email IS NULL OR user_email = $2)
		     ORDER BY user_email NULLS LAST
		     LIMIT 1
		 )
		 `

	res, err := r.db.ExecContext(ctx, query, section, email, category)
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

func (r *PostgresRepository) DeleteAllFor(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE user_email = $1`, email)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountDefaults(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM sections WHERE user_email IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return count, nil
}

func scanSection(rows *sql.Rows) (*models.Section, error) {

	section := &models.Section{}
	var categories []byte

	if err := rows.Scan(&section.ID, &section.Name, &categories, &section.UserEmail); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	if err := json.Unmarshal(categories, &section.Categories); err != nil {
		return nil, fmt.Errorf("error decoding categories: %w", err)
	}
	if section.Categories == nil {
		section.Categories = []string{}
	}

	return section, nil
}

func emptyIfNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
