package item

import (
	"context"
	"fmt"
	"time"

	"github.com/madadgarapp/listings-api/internal/application/notification"
	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/madadgarapp/listings-api/internal/pkg/id"
	"github.com/madadgarapp/listings-api/internal/pkg/identity"
	"github.com/madadgarapp/listings-api/internal/pkg/validate"
)

const deleteReasonOwner = "Post removed by owner"

type Service interface {
	Create(ctx context.Context, ownerID string, req domain.CreateItemRequest) (*domain.Item, error)
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	ListActive(ctx context.Context, limit int32) ([]domain.Item, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error)
	Delete(ctx context.Context, itemID, userID string) error
}

type itemStore interface {
	Put(ctx context.Context, it *domain.Item) error
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	ListActive(ctx context.Context, limit int32) ([]domain.Item, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error)
	SoftDelete(ctx context.Context, itemID string) error
}

type outbox interface {
	Enqueue(job notification.Job)
}

type service struct {
	repo   itemStore
	outbox outbox
}

func NewService(repo itemStore, ob outbox) Service {
	return &service{repo: repo, outbox: ob}
}

// Create validates and persists a new listing, then queues the fan-out.
// The item write is the source of truth; a dropped fan-out job never
// undoes it.
func (s *service) Create(ctx context.Context, ownerID string, req domain.CreateItemRequest) (*domain.Item, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("expires_at must be RFC3339: %w", domain.ErrBadRequest)
		}
		expiresAt = &t
	}

	now := time.Now().UTC()
	it := &domain.Item{
		ItemID:        id.New(),
		Title:         req.Title,
		Description:   req.Description,
		MainCategory:  req.MainCategory,
		SubCategory:   req.SubCategory,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		ContactNumber: req.ContactNumber,
		Contact1:      req.Contact1,
		Contact2:      req.Contact2,
		OwnerID:       ownerID,
		ImageURLs:     req.ImageURLs,
		VideoURL:      req.VideoURL,
		IsActive:      1,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Put(ctx, it); err != nil {
		return nil, fmt.Errorf("put item: %w", err)
	}

	s.outbox.Enqueue(notification.Job{Kind: notification.JobItemCreated, Item: *it})
	return it, nil
}

func (s *service) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	return s.repo.Get(ctx, itemID)
}

func (s *service) ListActive(ctx context.Context, limit int32) ([]domain.Item, error) {
	return s.repo.ListActive(ctx, limit)
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete soft-deletes a listing. Only the owner may remove it; the
// comparison tolerates padding and case differences in stored ids.
func (s *service) Delete(ctx context.Context, itemID, userID string) error {
	it, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if !identity.Same(it.OwnerID, userID) {
		return fmt.Errorf("item belongs to another user: %w", domain.ErrForbidden)
	}
	if err := s.repo.SoftDelete(ctx, itemID); err != nil {
		return fmt.Errorf("soft delete item: %w", err)
	}

	s.outbox.Enqueue(notification.Job{
		Kind:   notification.JobItemDeleted,
		Item:   *it,
		Reason: deleteReasonOwner,
	})
	return nil
}
