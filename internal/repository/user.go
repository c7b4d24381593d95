package repository

import (
	"context"

	"users-service/internal/domain"
)

// UsersCollection is the name of the document collection holding users.
const UsersCollection = "users"

// UserRepository defines persistence operations for User documents.
// Lookups report absence through the boolean result, not through an error.
type UserRepository interface {
	Init(ctx context.Context) error
	FindByID(ctx context.Context, id string) (*domain.User, bool, error)
	FindByName(ctx context.Context, name string) (*domain.User, bool, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	// Save inserts the user under a fresh id when user.ID is empty, otherwise
	// it replaces (or creates) the document with that id.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, user *domain.User) error
}
