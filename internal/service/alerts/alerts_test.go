package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDeduplicator_SuppressesIdenticalPairs(t *testing.T) {
	dedup := NewDeduplicator(NewMemoryStore(time.Hour), nil)
	ctx := context.Background()

	if !dedup.ShouldSend(ctx, "Understock", "body") {
		t.Error("first occurrence must send")
	}
	if dedup.ShouldSend(ctx, "Understock", "body") {
		t.Error("identical (kind, body) pair must be suppressed")
	}
	if !dedup.ShouldSend(ctx, "Overstock", "body") {
		t.Error("same body under a different kind is a different alert")
	}
	if !dedup.ShouldSend(ctx, "Understock", "other body") {
		t.Error("different body under the same kind is a different alert")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	if seen, _ := store.Seen(ctx, "k"); seen {
		t.Error("fresh key must not be seen")
	}
	if seen, _ := store.Seen(ctx, "k"); !seen {
		t.Error("key within TTL must be seen")
	}

	current = current.Add(2 * time.Minute)
	if seen, _ := store.Seen(ctx, "k"); seen {
		t.Error("key must resurface after the TTL window")
	}
	if len(store.keys) != 1 {
		t.Errorf("expired keys must be pruned, map holds %d", len(store.keys))
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, _ = store.Seen(ctx, "k")
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if seen, _ := store.Seen(ctx, "k"); seen {
		t.Error("cleared key must not be seen")
	}
}

func TestDeduplicator_FailsOpenOnStoreError(t *testing.T) {
	dedup := NewDeduplicator(failingStore{}, nil)
	if !dedup.ShouldSend(context.Background(), "Understock", "body") {
		t.Error("store failure must not drop the alert")
	}
}

type failingStore struct{}

func (failingStore) Seen(ctx context.Context, key string) (bool, error) {
	return false, errors.New("store down")
}
func (failingStore) Clear(ctx context.Context) error { return nil }

// recordingChannel captures sent alerts; failing makes Send error.
type recordingChannel struct {
	mu      sync.Mutex
	name    string
	failing bool
	sent    []Alert
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(ctx context.Context, alert Alert) error {
	if c.failing {
		return errors.New("delivery failed")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, alert)
	return nil
}

func TestDispatcher_FailingChannelDoesNotAbortOthers(t *testing.T) {
	broken := &recordingChannel{name: "broken", failing: true}
	working := &recordingChannel{name: "working"}
	dispatcher := NewDispatcher([]Channel{broken, working}, nil)

	dispatcher.Dispatch(context.Background(), Alert{Kind: "Understock", Subject: "s", Body: "b"})

	if len(working.sent) != 1 {
		t.Fatalf("expected delivery to reach the working channel, got %d", len(working.sent))
	}
	if working.sent[0].Body != "b" {
		t.Errorf("unexpected alert body %q", working.sent[0].Body)
	}
}

func TestDeduplicator_ConcurrentCallsDispatchOnce(t *testing.T) {
	dedup := NewDeduplicator(NewMemoryStore(time.Hour), nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	sends := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if dedup.ShouldSend(context.Background(), "Expired Products", "same body") {
				mu.Lock()
				sends++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if sends != 1 {
		t.Errorf("expected exactly one send, got %d", sends)
	}
}
