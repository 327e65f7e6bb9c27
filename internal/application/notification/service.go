package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/madadgarapp/listings-api/internal/pkg/id"
	"github.com/madadgarapp/listings-api/internal/pkg/identity"
)

type Service interface {
	ResolveRecipients(ctx context.Context, actorID string) ([]string, error)
	CreateForRecipients(ctx context.Context, recipients []string, typ, title, body string, payload map[string]string) ([]domain.Notification, error)
	ListAll(ctx context.Context, userID string) ([]domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	Delete(ctx context.Context, notificationID, userID string) error
}

type notificationStore interface {
	BatchPut(ctx context.Context, rows []domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error)
	Delete(ctx context.Context, notificationID string) error
}

type deviceUserSource interface {
	ListActiveUserIDs(ctx context.Context) ([]string, error)
}

type profileUserSource interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

type service struct {
	repo     notificationStore
	devices  deviceUserSource
	profiles profileUserSource
	logger   *slog.Logger
}

type ServiceDeps struct {
	NotificationRepo notificationStore
	DeviceRepo       deviceUserSource
	UserRepo         profileUserSource
	Logger           *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:     deps.NotificationRepo,
		devices:  deps.DeviceRepo,
		profiles: deps.UserRepo,
		logger:   logger,
	}
}

// ResolveRecipients unions users with an active device token and users with
// an enabled profile, minus the acting user. Duplicates keep their first
// position: device-token users first, then profile users. A failing source
// contributes nothing instead of failing the whole resolution.
func (s *service) ResolveRecipients(ctx context.Context, actorID string) ([]string, error) {
	deviceIDs, err := s.devices.ListActiveUserIDs(ctx)
	if err != nil {
		s.logger.Warn("device token recipient source failed", "error", err)
		deviceIDs = nil
	}
	profileIDs, err := s.profiles.ListUserIDs(ctx)
	if err != nil {
		s.logger.Warn("profile recipient source failed", "error", err)
		profileIDs = nil
	}

	seen := make(map[string]struct{}, len(deviceIDs)+len(profileIDs))
	out := make([]string, 0, len(deviceIDs)+len(profileIDs))
	for _, uid := range append(deviceIDs, profileIDs...) {
		if uid == "" || identity.Same(uid, actorID) {
			continue
		}
		key := identity.Normalize(uid)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, uid)
	}
	return out, nil
}

// CreateForRecipients writes one notification row per recipient. An empty
// recipient list is a no-op, not an error.
func (s *service) CreateForRecipients(ctx context.Context, recipients []string, typ, title, body string, payload map[string]string) ([]domain.Notification, error) {
	if len(recipients) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	rows := make([]domain.Notification, 0, len(recipients))
	for _, uid := range recipients {
		rows = append(rows, domain.Notification{
			NotificationID: id.New(),
			UserID:         uid,
			Type:           typ,
			Title:          title,
			Body:           body,
			Payload:        payload,
			IsRead:         false,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err := s.repo.BatchPut(ctx, rows); err != nil {
		return nil, fmt.Errorf("write notification records: %w", err)
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	rows, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// MarkRead persists the read flag. Only the recipient may flip it.
func (s *service) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *service) Delete(ctx context.Context, notificationID, userID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, notificationID)
}
