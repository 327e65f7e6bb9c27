package device

import (
	"context"
	"errors"
	"testing"

	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) PutNew(ctx context.Context, t *domain.DeviceToken) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTokenStore) Get(ctx context.Context, userID, token string) (*domain.DeviceToken, error) {
	args := m.Called(ctx, userID, token)
	if t, _ := args.Get(0).(*domain.DeviceToken); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTokenStore) SetActive(ctx context.Context, userID, token string, active bool) error {
	return m.Called(ctx, userID, token, active).Error(0)
}
func (m *mockTokenStore) DeactivateOthers(ctx context.Context, userID, keep string) error {
	return m.Called(ctx, userID, keep).Error(0)
}
func (m *mockTokenStore) DeactivateAll(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockTokenStore) ListActiveByUsers(ctx context.Context, userIDs []string) ([]domain.DeviceToken, error) {
	args := m.Called(ctx, userIDs)
	if rows, _ := args.Get(0).([]domain.DeviceToken); rows != nil {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- tests ---

func TestRegisterOrRefresh_NewToken(t *testing.T) {
	repo := &mockTokenStore{}
	repo.On("Get", mock.Anything, "u1", "tok-new").Return(nil, domain.ErrNotFound)
	repo.On("DeactivateOthers", mock.Anything, "u1", "tok-new").Return(nil)
	repo.On("PutNew", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo, nil)
	got, err := svc.RegisterOrRefresh(context.Background(), "u1", domain.RegisterTokenRequest{Token: "tok-new"})

	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "tok-new", got.DeviceToken)
	assert.Equal(t, domain.PlatformAndroid, got.Platform)
	assert.True(t, got.IsActive)
	assert.NotEmpty(t, got.TokenID)
	repo.AssertExpectations(t)
}

func TestRegisterOrRefresh_ExistingPairIsIdempotent(t *testing.T) {
	existing := &domain.DeviceToken{TokenID: "t1", UserID: "u1", DeviceToken: "tok-a", IsActive: false}
	repo := &mockTokenStore{}
	repo.On("Get", mock.Anything, "u1", "tok-a").Return(existing, nil)
	repo.On("SetActive", mock.Anything, "u1", "tok-a", true).Return(nil)

	svc := NewService(repo, nil)
	got, err := svc.RegisterOrRefresh(context.Background(), "u1", domain.RegisterTokenRequest{Token: "tok-a"})

	require.NoError(t, err)
	assert.Equal(t, "t1", got.TokenID)
	assert.True(t, got.IsActive)
	repo.AssertNotCalled(t, "PutNew", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DeactivateOthers", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestRegisterOrRefresh_NewTokenDeactivatesOthers(t *testing.T) {
	repo := &mockTokenStore{}
	repo.On("Get", mock.Anything, "u1", "tok-b").Return(nil, domain.ErrNotFound)
	repo.On("DeactivateOthers", mock.Anything, "u1", "tok-b").Return(errors.New("dynamo throttled"))
	repo.On("PutNew", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo, nil)
	_, err := svc.RegisterOrRefresh(context.Background(), "u1", domain.RegisterTokenRequest{Token: "tok-b", Platform: domain.PlatformIOS})

	// Deactivation is best-effort; registration still succeeds.
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRegisterOrRefresh_ConcurrentConflictSucceeds(t *testing.T) {
	row := &domain.DeviceToken{TokenID: "t2", UserID: "u1", DeviceToken: "tok-c", IsActive: true}
	repo := &mockTokenStore{}
	repo.On("Get", mock.Anything, "u1", "tok-c").Return(nil, domain.ErrNotFound).Once()
	repo.On("DeactivateOthers", mock.Anything, "u1", "tok-c").Return(nil)
	repo.On("PutNew", mock.Anything, mock.Anything).Return(domain.ErrConflict)
	repo.On("SetActive", mock.Anything, "u1", "tok-c", true).Return(nil)
	repo.On("Get", mock.Anything, "u1", "tok-c").Return(row, nil)

	svc := NewService(repo, nil)
	got, err := svc.RegisterOrRefresh(context.Background(), "u1", domain.RegisterTokenRequest{Token: "tok-c"})

	require.NoError(t, err)
	assert.Equal(t, "t2", got.TokenID)
	repo.AssertExpectations(t)
}

func TestDeactivateAll_SwallowsStoreErrors(t *testing.T) {
	repo := &mockTokenStore{}
	repo.On("DeactivateAll", mock.Anything, "u1").Return(errors.New("dynamo unavailable"))

	svc := NewService(repo, nil)
	err := svc.DeactivateAll(context.Background(), "u1")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
