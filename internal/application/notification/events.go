package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/madadgarapp/listings-api/internal/application/push"
	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/madadgarapp/listings-api/internal/pkg/identity"
)

// Events turns item lifecycle changes into in-app records plus a push
// fan-out. Record writing and push dispatch are independent stages: a
// failed dispatch never rolls back records already written.
type Events interface {
	NotifyItemCreated(ctx context.Context, item *domain.Item) error
	NotifyItemDeleted(ctx context.Context, item *domain.Item, reason string) error
	NotifySystemAlert(ctx context.Context, title, body string, recipients []string) error
}

type events struct {
	svc        Service
	dispatcher push.Dispatcher
	logger     *slog.Logger
}

func NewEvents(svc Service, dispatcher push.Dispatcher, logger *slog.Logger) Events {
	if logger == nil {
		logger = slog.Default()
	}
	return &events{svc: svc, dispatcher: dispatcher, logger: logger}
}

func (e *events) NotifyItemCreated(ctx context.Context, item *domain.Item) error {
	title := fmt.Sprintf("New %s Available", item.MainCategory)
	body := fmt.Sprintf("%s has been shared in %s", item.Title, item.Location)
	payload := map[string]string{
		domain.PayloadKeyItemID:      item.ItemID,
		domain.PayloadKeyCategory:    item.MainCategory,
		domain.PayloadKeySubcategory: item.SubCategory,
		domain.PayloadKeyLocation:    item.Location,
		domain.PayloadKeyTitle:       item.Title,
		domain.PayloadKeyUploaderID:  item.OwnerID,
	}
	return e.fanOut(ctx, item.OwnerID, domain.NotificationTypeNewListing, title, body, payload)
}

func (e *events) NotifyItemDeleted(ctx context.Context, item *domain.Item, reason string) error {
	title := "Post No Longer Available"
	body := fmt.Sprintf("%s has been removed from %s", item.Title, item.Location)
	payload := map[string]string{
		domain.PayloadKeyItemID:         item.ItemID,
		domain.PayloadKeyTitle:          item.Title,
		domain.PayloadKeyLocation:       item.Location,
		domain.PayloadKeyUploaderID:     item.OwnerID,
		domain.PayloadKeyDeletionReason: reason,
		domain.PayloadKeyDeletedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	return e.fanOut(ctx, item.OwnerID, domain.NotificationTypePostDeleted, title, body, payload)
}

// NotifySystemAlert targets the given recipients, or every known user
// when the list is empty. There is no acting user to exclude.
func (e *events) NotifySystemAlert(ctx context.Context, title, body string, recipients []string) error {
	if len(recipients) > 0 {
		return e.deliver(ctx, recipients, "", domain.NotificationTypeSystemAlert, title, body, nil)
	}
	return e.fanOut(ctx, "", domain.NotificationTypeSystemAlert, title, body, nil)
}

func (e *events) fanOut(ctx context.Context, actorID, typ, title, body string, payload map[string]string) error {
	recipients, err := e.svc.ResolveRecipients(ctx, actorID)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	return e.deliver(ctx, recipients, actorID, typ, title, body, payload)
}

func (e *events) deliver(ctx context.Context, recipients []string, actorID, typ, title, body string, payload map[string]string) error {
	// The resolver already excludes the actor; filter again here so a
	// stale or differently cased recipient list can never notify the
	// user about their own action.
	filtered := recipients[:0:len(recipients)]
	for _, uid := range recipients {
		if identity.Same(uid, actorID) {
			continue
		}
		filtered = append(filtered, uid)
	}
	if len(filtered) == 0 {
		e.logger.Info("no recipients for notification", "type", typ)
		return nil
	}

	if _, err := e.svc.CreateForRecipients(ctx, filtered, typ, title, body, payload); err != nil {
		return err
	}

	res, err := e.dispatcher.Dispatch(ctx, push.DispatchRequest{
		UserIDs: filtered,
		Title:   title,
		Body:    body,
		Type:    typ,
		Data:    payload,
	})
	if err != nil {
		// Records are already durable; report and move on.
		e.logger.Warn("push dispatch failed", "type", typ, "error", err)
		return nil
	}
	e.logger.Info("push dispatch finished",
		"type", typ, "sent", res.SentCount, "failed", res.FailedCount)
	return nil
}
