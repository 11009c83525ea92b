package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avolkov/wardrobe/internal/server/dresses"
	"github.com/avolkov/wardrobe/internal/server/feedback"
	"github.com/avolkov/wardrobe/internal/server/migrations"
	"github.com/avolkov/wardrobe/internal/server/sections"
	"github.com/avolkov/wardrobe/internal/server/sessions"
	"github.com/avolkov/wardrobe/internal/server/tokens"
	"github.com/avolkov/wardrobe/internal/server/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
	db       *sql.DB
	users    users.Repository
	tokens   tokens.Repository
	sessions sessions.Store
	sections sections.Repository
	dresses  dresses.Repository
	feedback feedback.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) Tokens() tokens.Repository {
	return m.tokens
}

func (m *PostgresRepositoryManager) Sessions() sessions.Store {
	return m.sessions
}

func (m *PostgresRepositoryManager) Sections() sections.Repository {
	return m.sections
}

func (m *PostgresRepositoryManager) Dresses() dresses.Repository {
	return m.dresses
}

func (m *PostgresRepositoryManager) Feedback() feedback.Repository {
	return m.feedback
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string, sessionTTL time.Duration) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	userRepo, err := users.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("user repo creation error: %w", err)
	}

	tokenRepo, err := tokens.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("token repo creation error: %w", err)
	}

	sessionStore, err := sessions.NewPostgresStore(db, sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("session store creation error: %w", err)
	}

	sectionRepo, err := sections.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("section repo creation error: %w", err)
	}

	dressRepo, err := dresses.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("dress repo creation error: %w", err)
	}

	feedbackRepo, err := feedback.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("feedback repo creation error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:       db,
		users:    userRepo,
		tokens:   tokenRepo,
		sessions: sessionStore,
		sections: sectionRepo,
		dresses:  dressRepo,
		feedback: feedbackRepo,
	}

	err = m.RunMigrations(context.Background())
	if err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
