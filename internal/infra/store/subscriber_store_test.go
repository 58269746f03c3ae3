package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestStore(t *testing.T) (*SubscriberStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subscriptions.json")
	return NewSubscriberStore(path, newTestLogger()), path
}

func TestSubscribeLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if !s.Subscribe(ctx, 42, "A") {
		t.Fatal("first subscribe must report a new subscription")
	}
	if s.Subscribe(ctx, 42, "A") {
		t.Fatal("second subscribe must be a no-op")
	}
	if got := s.SubscriberCount(ctx); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}

	if !s.Unsubscribe(ctx, 42) {
		t.Fatal("unsubscribe of an enabled record must succeed")
	}
	if s.Unsubscribe(ctx, 42) {
		t.Fatal("unsubscribe of an already disabled record must report false")
	}
	if s.IsSubscribed(ctx, 42) {
		t.Fatal("disabled record must not count as subscribed")
	}
	if got := s.SubscriberCount(ctx); got != 0 {
		t.Fatalf("count after opt-out = %d, want 0", got)
	}

	// Re-enable keeps the record, does not create a duplicate.
	if !s.Subscribe(ctx, 42, "A") {
		t.Fatal("re-subscribe after opt-out must report a transition")
	}
	if got := s.SubscriberCount(ctx); got != 1 {
		t.Fatalf("count after re-enable = %d, want 1", got)
	}
	if len(s.subs) != 1 {
		t.Fatalf("re-enable must not duplicate the record, records=%d", len(s.subs))
	}
}

func TestUnsubscribeUnknownChat(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if s.Unsubscribe(ctx, 7) {
		t.Fatal("unknown chats must not be implicitly created")
	}
	if len(s.subs) != 0 {
		t.Fatalf("registry must stay empty, records=%d", len(s.subs))
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	for _, id := range []int64{1, 2, 3} {
		s.Subscribe(ctx, id, "user")
	}
	s.Subscribe(ctx, 4, "quitter")
	s.Unsubscribe(ctx, 4)

	reloaded := NewSubscriberStore(path, newTestLogger())
	if got := reloaded.SubscriberCount(ctx); got != 3 {
		t.Fatalf("reloaded count = %d, want 3", got)
	}
	active := reloaded.ActiveSubscribers(ctx)
	want := map[int64]bool{1: true, 2: true, 3: true}
	if len(active) != 3 {
		t.Fatalf("active = %v, want ids 1..3", active)
	}
	for _, id := range active {
		if !want[id] {
			t.Fatalf("unexpected active id %d", id)
		}
	}
	// The opted-out record survives for idempotence.
	if reloaded.IsSubscribed(ctx, 4) {
		t.Fatal("opted-out record must stay disabled after reload")
	}
	if len(reloaded.subs) != 4 {
		t.Fatalf("disabled records must persist, records=%d", len(reloaded.subs))
	}
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "subscriptions.json")
	blob := `{
  "1": {"chat_id": 1, "username": "ok", "subscribed_at": "2025-01-01T10:00:00Z", "notifications_enabled": true},
  "2": {"chat_id": "definitely-not-a-number", "username": 5}
}`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSubscriberStore(path, newTestLogger())
	if got := s.SubscriberCount(ctx); got != 1 {
		t.Fatalf("count = %d, want the well-formed record only", got)
	}
	if !s.IsSubscribed(ctx, 1) {
		t.Fatal("well-formed record must load")
	}
}

func TestSaveWritesFullSnapshot(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)
	s.Subscribe(ctx, 10, "a")
	s.Subscribe(ctx, 20, "b")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]struct {
		ChatID   int64  `json:"chat_id"`
		Username string `json:"username"`
		Enabled  bool   `json:"notifications_enabled"`
	}
	if err := json.Unmarshal(b, &data); err != nil {
		t.Fatalf("file is not a JSON object: %v", err)
	}
	if len(data) != 2 {
		t.Fatalf("file records = %d, want 2", len(data))
	}
	if rec, ok := data["10"]; !ok || rec.ChatID != 10 || !rec.Enabled {
		t.Fatalf("record 10 malformed: %+v ok=%v", rec, ok)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp snapshot must be renamed over the file, stat err=%v", err)
	}
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Subscribe(ctx, id, "u")
			if id%2 == 0 {
				s.Unsubscribe(ctx, id)
			}
			s.ActiveSubscribers(ctx)
		}(int64(i + 1))
	}
	wg.Wait()

	if got := s.SubscriberCount(ctx); got != 16 {
		t.Fatalf("count = %d, want 16 odd ids enabled", got)
	}
}
