package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"users-service/internal/domain"
	"users-service/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS ` + repository.UsersCollection + ` (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

// FindByName returns the first stored user with the given name.
func (r *UserRepository) FindByName(ctx context.Context, name string) (*domain.User, bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name
FROM users
WHERE name = ?
ORDER BY rowid
LIMIT 1`,
		name,
	)
	return scanUser(row)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name
FROM users
ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	saved := domain.User{ID: user.ID, Name: user.Name}
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}

	// the upsert keeps the original rowid, so listing order stays insertion order
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, name)
VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		saved.ID,
		saved.Name,
	); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return &saved, nil
}

func (r *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, bool, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("scan user: %w", err)
	}
	return &user, true, nil
}
