package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEvents struct {
	mu      sync.Mutex
	created []string
	deleted []string
	reasons []string
	done    chan struct{}
}

func newRecordingEvents(expect int) *recordingEvents {
	return &recordingEvents{done: make(chan struct{}, expect)}
}

func (r *recordingEvents) NotifyItemCreated(ctx context.Context, item *domain.Item) error {
	r.mu.Lock()
	r.created = append(r.created, item.ItemID)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingEvents) NotifyItemDeleted(ctx context.Context, item *domain.Item, reason string) error {
	r.mu.Lock()
	r.deleted = append(r.deleted, item.ItemID)
	r.reasons = append(r.reasons, reason)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingEvents) NotifySystemAlert(ctx context.Context, title, body string, recipients []string) error {
	return nil
}

func (r *recordingEvents) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for outbox worker")
		}
	}
}

func TestOutbox_ProcessesJobsInOrder(t *testing.T) {
	ev := newRecordingEvents(3)
	ob := NewOutbox(ev, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ob.Run(ctx)

	ob.Enqueue(Job{Kind: JobItemCreated, Item: domain.Item{ItemID: "a"}})
	ob.Enqueue(Job{Kind: JobItemCreated, Item: domain.Item{ItemID: "b"}})
	ob.Enqueue(Job{Kind: JobItemDeleted, Item: domain.Item{ItemID: "a"}, Reason: "Post removed by owner"})

	ev.wait(t, 3)
	assert.Equal(t, []string{"a", "b"}, ev.created)
	assert.Equal(t, []string{"a"}, ev.deleted)
	assert.Equal(t, []string{"Post removed by owner"}, ev.reasons)
}

func TestOutbox_EnqueueNeverBlocksWhenFull(t *testing.T) {
	// No worker running: the buffer fills and further jobs are dropped.
	ev := newRecordingEvents(0)
	ob := NewOutbox(ev, 1, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			ob.Enqueue(Job{Kind: JobItemCreated, Item: domain.Item{ItemID: "x"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full outbox")
	}
}

func TestOutbox_StopsOnContextCancel(t *testing.T) {
	ev := newRecordingEvents(1)
	ob := NewOutbox(ev, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		ob.Run(ctx)
		close(stopped)
	}()

	ob.Enqueue(Job{Kind: JobItemCreated, Item: domain.Item{ItemID: "a"}})
	ev.wait(t, 1)
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
	require.Len(t, ev.created, 1)
}
