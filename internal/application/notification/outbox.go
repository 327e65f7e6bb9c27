package notification

import (
	"context"
	"log/slog"

	"github.com/madadgarapp/listings-api/internal/domain"
)

// Job kinds processed by the outbox.
const (
	JobItemCreated = "item_created"
	JobItemDeleted = "item_deleted"
)

// Job is one queued notification fan-out.
type Job struct {
	Kind   string
	Item   domain.Item
	Reason string
}

// Outbox decouples item writes from notification fan-out: the request that
// created or deleted an item returns as soon as the row is durable, and a
// single worker drains the queue. When the buffer is full the job is
// dropped with a warning rather than blocking the caller.
type Outbox struct {
	events Events
	jobs   chan Job
	logger *slog.Logger
}

func NewOutbox(events Events, capacity int, logger *slog.Logger) *Outbox {
	if capacity <= 0 {
		capacity = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{
		events: events,
		jobs:   make(chan Job, capacity),
		logger: logger,
	}
}

// Enqueue never blocks. Notification delivery is best-effort; a dropped
// job loses a fan-out, never item data.
func (o *Outbox) Enqueue(job Job) {
	select {
	case o.jobs <- job:
	default:
		o.logger.Warn("notification outbox full, dropping job",
			"kind", job.Kind, "item_id", job.Item.ItemID)
	}
}

// Run drains the queue until ctx is cancelled. Call it in its own goroutine.
func (o *Outbox) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-o.jobs:
			o.process(ctx, job)
		}
	}
}

func (o *Outbox) process(ctx context.Context, job Job) {
	var err error
	switch job.Kind {
	case JobItemCreated:
		err = o.events.NotifyItemCreated(ctx, &job.Item)
	case JobItemDeleted:
		err = o.events.NotifyItemDeleted(ctx, &job.Item, job.Reason)
	default:
		o.logger.Warn("unknown outbox job kind", "kind", job.Kind)
		return
	}
	if err != nil {
		o.logger.Error("notification fan-out failed",
			"kind", job.Kind, "item_id", job.Item.ItemID, "error", err)
	}
}
