package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"users-service/internal/domain"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*domain.User, bool, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *mockRepository) FindByName(ctx context.Context, name string) (*domain.User, bool, error) {
	args := m.Called(ctx, name)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *mockRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *mockRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	saved, _ := args.Get(0).(*domain.User)
	return saved, args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

var (
	testID    = uuid.NewString()
	wrongID   = uuid.NewString()
	errBroken = errors.New("connection reset")
)

func newTestUser() *domain.User {
	return &domain.User{ID: testID, Name: "Andrei"}
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindByID", ctx, testID).Return(newTestUser(), true, nil)

		user, err := NewUserService(repo).GetUser(ctx, testID)
		require.NoError(t, err)
		assert.Equal(t, newTestUser(), user)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindByID", ctx, wrongID).Return(nil, false, nil)

		_, err := NewUserService(repo).GetUser(ctx, wrongID)
		assert.ErrorIs(t, err, ErrUserDoesNotExist)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindByID", ctx, testID).Return(nil, false, errBroken)

		_, err := NewUserService(repo).GetUser(ctx, testID)
		assert.ErrorIs(t, err, errBroken)
		assert.NotErrorIs(t, err, ErrUserDoesNotExist)
	})
}

func TestGetUsers(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	stored := []domain.User{*newTestUser(), {ID: wrongID, Name: "Alex"}}
	repo.On("FindAll", ctx).Return(stored, nil)

	svc := NewUserService(repo)
	first, err := svc.GetUsers(ctx)
	require.NoError(t, err)
	second, err := svc.GetUsers(ctx)
	require.NoError(t, err)

	assert.Equal(t, stored, first)
	assert.Equal(t, first, second)
}

func TestAddUserDiscardsSuppliedID(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("Save", ctx, &domain.User{Name: "Alex"}).Return(&domain.User{ID: testID, Name: "Alex"}, nil)

	saved, err := NewUserService(repo).AddUser(ctx, &domain.User{ID: wrongID, Name: "Alex"})
	require.NoError(t, err)
	assert.Equal(t, testID, saved.ID)
	assert.Equal(t, "Alex", saved.Name)
	repo.AssertExpectations(t)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		repo := new(mockRepository)
		update := &domain.User{ID: testID, Name: "Dan"}
		repo.On("FindByID", ctx, testID).Return(newTestUser(), true, nil)
		repo.On("Save", ctx, update).Return(update, nil)

		user, err := NewUserService(repo).UpdateUser(ctx, testID, update)
		require.NoError(t, err)
		assert.Equal(t, "Dan", user.Name)
		repo.AssertExpectations(t)
	})

	t.Run("id mismatch never touches the store", func(t *testing.T) {
		repo := new(mockRepository)

		_, err := NewUserService(repo).UpdateUser(ctx, uuid.NewString(), newTestUser())
		assert.ErrorIs(t, err, ErrUserIDMismatch)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("ids compared by value", func(t *testing.T) {
		repo := new(mockRepository)
		// built separately so the strings do not share backing storage
		pathID := string([]byte(testID))
		update := &domain.User{ID: string([]byte(testID)), Name: "Dan"}
		repo.On("FindByID", ctx, pathID).Return(newTestUser(), true, nil)
		repo.On("Save", ctx, update).Return(update, nil)

		_, err := NewUserService(repo).UpdateUser(ctx, pathID, update)
		assert.NoError(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindByID", ctx, wrongID).Return(nil, false, nil)

		_, err := NewUserService(repo).UpdateUser(ctx, wrongID, &domain.User{ID: wrongID, Name: "Alex"})
		assert.ErrorIs(t, err, ErrUserDoesNotExist)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindByID", ctx, testID).Return(newTestUser(), true, nil).Once()
		repo.On("FindByID", ctx, testID).Return(nil, false, nil)
		repo.On("Delete", ctx, newTestUser()).Return(nil).Once()

		svc := NewUserService(repo)
		deleted, err := svc.DeleteUser(ctx, testID)
		require.NoError(t, err)
		assert.Equal(t, newTestUser(), deleted)
		repo.AssertNumberOfCalls(t, "Delete", 1)

		_, err = svc.GetUser(ctx, testID)
		assert.ErrorIs(t, err, ErrUserDoesNotExist)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindByID", ctx, wrongID).Return(nil, false, nil)

		_, err := NewUserService(repo).DeleteUser(ctx, wrongID)
		assert.ErrorIs(t, err, ErrUserDoesNotExist)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
