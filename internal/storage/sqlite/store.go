package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tjfontaine/snaptrade-go/internal/storage"
)

// Store is a SQLite implementation of UserStore
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)

// New creates a new SQLite store
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			secret TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) SaveUser(ctx context.Context, user *storage.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID required")
	}

	now := time.Now().UTC().Truncate(time.Second)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	query := `INSERT INTO users (id, secret, created_at, updated_at)
	          VALUES (?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET secret = excluded.secret, updated_at = excluded.updated_at
	          RETURNING created_at`

	var created int64
	err := s.db.QueryRowContext(ctx, query, user.ID, user.Secret, user.CreatedAt.Unix(), now.Unix()).Scan(&created)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	user.CreatedAt = time.Unix(created, 0).UTC()

	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*storage.User, error) {
	query := `SELECT id, secret, created_at FROM users WHERE id = ?`

	var user storage.User
	var created int64
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Secret, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = time.Unix(created, 0).UTC()

	return &user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("user %s: %w", id, storage.ErrUserNotFound)
	}

	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*storage.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, secret, created_at FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*storage.User
	for rows.Next() {
		var user storage.User
		var created int64
		if err := rows.Scan(&user.ID, &user.Secret, &created); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.CreatedAt = time.Unix(created, 0).UTC()
		users = append(users, &user)
	}

	return users, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
