package user

import (
	"context"
	"errors"
	"testing"

	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) SoftDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Username: "alice",
		Password: "password123",
		Email:    "alice@example.com",
	}
}

func TestRegister_Success(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)

	var saved *domain.User
	repo.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.User)
	}).Return(nil)

	svc := NewService(repo)
	u, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, u.Enable)
	require.NotNil(t, saved)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("password123")))
}

func TestRegister_UsernameConflict(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{}, nil)

	svc := NewService(repo)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_EmailConflict(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{}, nil)

	svc := NewService(repo)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_ShortPassword(t *testing.T) {
	repo := &mockUserStore{}
	req := baseReq()
	req.Password = "short"

	svc := NewService(repo)
	_, err := svc.Register(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
