package service

import (
	"context"
	"errors"
	"fmt"

	"users-service/internal/domain"
	"users-service/internal/repository"
)

var (
	// ErrUserDoesNotExist indicates that no user is stored under the requested id.
	ErrUserDoesNotExist = errors.New("user does not exist")
	// ErrUserIDMismatch indicates that an update body carries a different id than the path.
	ErrUserIDMismatch = errors.New("user id and path id do not match")
)

// UserService describes user lifecycle operations.
type UserService interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUsers(ctx context.Context) ([]domain.User, error)
	AddUser(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, user *domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.mustFind(ctx, id)
}

func (s *userService) GetUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

// AddUser always stores a new document; any id on the input is discarded.
func (s *userService) AddUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	saved, err := s.users.Save(ctx, &domain.User{Name: user.Name})
	if err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}
	return saved, nil
}

// UpdateUser replaces the stored user with the payload as a whole.
func (s *userService) UpdateUser(ctx context.Context, id string, user *domain.User) (*domain.User, error) {
	if user.ID != id {
		return nil, ErrUserIDMismatch
	}
	if _, err := s.mustFind(ctx, id); err != nil {
		return nil, err
	}

	saved, err := s.users.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return saved, nil
}

// DeleteUser removes the user and returns the snapshot taken before removal.
func (s *userService) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, user); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return user, nil
}

func (s *userService) mustFind(ctx context.Context, id string) (*domain.User, error) {
	user, ok, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", id, err)
	}
	if !ok {
		return nil, ErrUserDoesNotExist
	}
	return user, nil
}
