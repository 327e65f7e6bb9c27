package device

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/madadgarapp/listings-api/internal/pkg/id"
)

type Service interface {
	RegisterOrRefresh(ctx context.Context, userID string, req domain.RegisterTokenRequest) (*domain.DeviceToken, error)
	DeactivateAll(ctx context.Context, userID string) error
	ListActiveTokens(ctx context.Context, userID string) ([]domain.DeviceToken, error)
}

type tokenStore interface {
	PutNew(ctx context.Context, t *domain.DeviceToken) error
	Get(ctx context.Context, userID, token string) (*domain.DeviceToken, error)
	SetActive(ctx context.Context, userID, token string, active bool) error
	DeactivateOthers(ctx context.Context, userID, keep string) error
	DeactivateAll(ctx context.Context, userID string) error
	ListActiveByUsers(ctx context.Context, userIDs []string) ([]domain.DeviceToken, error)
}

type service struct {
	repo   tokenStore
	logger *slog.Logger
}

func NewService(repo tokenStore, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, logger: logger}
}

// RegisterOrRefresh makes token the active push endpoint for userID. The
// call is idempotent: re-registering an existing (user, token) pair only
// refreshes its active flag. A new token deactivates the user's other
// tokens first, so at most one endpoint per user receives pushes.
func (s *service) RegisterOrRefresh(ctx context.Context, userID string, req domain.RegisterTokenRequest) (*domain.DeviceToken, error) {
	platform := req.Platform
	if platform == "" {
		platform = domain.PlatformAndroid
	}

	if existing, err := s.repo.Get(ctx, userID, req.Token); err == nil {
		if err := s.repo.SetActive(ctx, userID, req.Token, true); err != nil {
			// The row exists; a failed touch only delays reactivation.
			s.logger.Warn("device token refresh failed", "user_id", userID, "error", err)
		} else {
			existing.IsActive = true
		}
		return existing, nil
	}

	if err := s.repo.DeactivateOthers(ctx, userID, req.Token); err != nil {
		s.logger.Warn("deactivating previous tokens failed", "user_id", userID, "error", err)
	}

	now := time.Now().UTC()
	t := &domain.DeviceToken{
		TokenID:     id.New(),
		UserID:      userID,
		DeviceToken: req.Token,
		Platform:    platform,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.PutNew(ctx, t); err != nil {
		// A concurrent registration of the same pair already produced the
		// desired state.
		if errors.Is(err, domain.ErrConflict) {
			if err := s.repo.SetActive(ctx, userID, req.Token, true); err != nil {
				s.logger.Warn("device token refresh failed", "user_id", userID, "error", err)
			}
			return s.repo.Get(ctx, userID, req.Token)
		}
		return nil, err
	}
	return t, nil
}

// DeactivateAll disables every active token for userID. Used on logout;
// failures are logged and swallowed so logout itself never fails.
func (s *service) DeactivateAll(ctx context.Context, userID string) error {
	if err := s.repo.DeactivateAll(ctx, userID); err != nil {
		s.logger.Warn("deactivating device tokens failed", "user_id", userID, "error", err)
	}
	return nil
}

func (s *service) ListActiveTokens(ctx context.Context, userID string) ([]domain.DeviceToken, error) {
	return s.repo.ListActiveByUsers(ctx, []string{userID})
}
