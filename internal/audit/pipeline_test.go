package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherDropsWhenBufferFull(t *testing.T) {
	publisher := NewChannelPublisher(1, discardLogger())

	publisher.Publish(Record{ID: "r-1"})
	// Second publish must not block even though nothing drains the inbox.
	done := make(chan struct{})
	go func() {
		publisher.Publish(Record{ID: "r-2"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}

	require.Len(t, publisher.Records(), 1)
}

func TestWorkerDrainsToStore(t *testing.T) {
	publisher := NewChannelPublisher(8, discardLogger())
	store := NewMemoryStore()
	worker := NewWorker(store, publisher.Records(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	publisher.Publish(Record{ID: "r-1", Method: "POST", Path: "/api/jobs/j-1/status", StatusCode: 204})
	publisher.Publish(Record{ID: "r-2", Method: "DELETE", Path: "/api/jobs/j-2", StatusCode: 404})

	require.Eventually(t, func() bool {
		return len(store.Records()) == 2
	}, time.Second, 10*time.Millisecond)

	records := store.Records()
	require.Equal(t, "r-1", records[0].ID)
	require.Equal(t, "r-2", records[1].ID)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	publisher := NewChannelPublisher(1, discardLogger())
	worker := NewWorker(NewMemoryStore(), publisher.Records(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- worker.Run(ctx) }()
	cancel()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
