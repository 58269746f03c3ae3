package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"bibliotech-bot/internal/domain/model"
	"bibliotech-bot/internal/domain/ports/repository"
	"bibliotech-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ repository.SubscriberRegistry = (*SubscriberStore)(nil)

// fallbackPath is used when the configured directory cannot be created.
const fallbackPath = "subscriptions.json"

// SubscriberStore is the durable registry of notification subscriptions.
// The in-memory map is the source of truth; every successful mutation
// rewrites the whole file so a crash can never leave a half-written record
// visible. A failed save is logged and retried implicitly on the next
// mutation; the process keeps serving from memory either way.
type SubscriberStore struct {
	mu   sync.Mutex
	path string
	subs map[int64]*model.Subscriber
	log  *zerolog.Logger
}

func NewSubscriberStore(path string, logger *zerolog.Logger) *SubscriberStore {
	compLog := logger.With().Str("component", "SubscriberStore").Logger()
	s := &SubscriberStore{
		path: path,
		subs: make(map[int64]*model.Subscriber),
		log:  &compLog,
	}
	s.ensureDirectory()
	s.load()
	metrics.SetActiveSubscribers(s.countEnabled())
	return s
}

func (s *SubscriberStore) ensureDirectory() {
	dir := filepath.Dir(s.path)
	if dir == "" || dir == "." {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Warn().Err(err).Str("dir", dir).Msg("cannot create store directory, falling back to working dir")
		s.path = fallbackPath
	}
}

// load reads the file if present. Each record is parsed independently so one
// malformed entry cannot take the whole registry down.
func (s *SubscriberStore) load() {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info().Str("path", s.path).Msg("subscriber file absent, starting empty")
		} else {
			s.log.Error().Err(err).Str("path", s.path).Msg("cannot read subscriber file")
		}
		return
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("subscriber file is not a JSON object, starting empty")
		return
	}
	for key, rec := range raw {
		var sub model.Subscriber
		if err := json.Unmarshal(rec, &sub); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("skipping malformed subscriber record")
			continue
		}
		if sub.ChatID == 0 {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				s.log.Warn().Str("key", key).Msg("skipping subscriber record without a chat id")
				continue
			}
			sub.ChatID = id
		}
		s.subs[sub.ChatID] = &sub
	}
	s.log.Info().Int("count", len(s.subs)).Msg("subscribers loaded")
}

// save serializes the whole mapping and overwrites the file. Must be called
// with the lock held.
func (s *SubscriberStore) save() {
	data := make(map[string]*model.Subscriber, len(s.subs))
	for id, sub := range s.subs {
		data[strconv.FormatInt(id, 10)] = sub
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err == nil {
		// Write-then-rename keeps the last full snapshot intact if the
		// process dies mid-write.
		tmp := s.path + ".tmp"
		if err = os.WriteFile(tmp, b, 0o644); err == nil {
			err = os.Rename(tmp, s.path)
		}
	}
	if err != nil {
		metrics.IncSubscriberSave("error")
		s.log.Error().Err(err).Str("path", s.path).Msg("saving subscribers failed, in-memory state stays authoritative")
		return
	}
	metrics.IncSubscriberSave("ok")
	s.log.Debug().Int("count", len(data)).Msg("subscribers saved")
}

// Subscribe enables notifications for chatID. A previously opted-out record
// is re-enabled in place so its original subscription date survives.
func (s *SubscriberStore) Subscribe(ctx context.Context, chatID int64, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.subs[chatID]; ok {
		if sub.Enabled {
			return false
		}
		sub.Enabled = true
		s.save()
		metrics.SetActiveSubscribers(s.countEnabled())
		s.log.Info().Int64("chat_id", chatID).Msg("subscriber re-enabled")
		return true
	}

	s.subs[chatID] = model.NewSubscriber(chatID, username)
	s.save()
	metrics.SetActiveSubscribers(s.countEnabled())
	s.log.Info().Int64("chat_id", chatID).Str("username", username).Msg("new subscriber")
	return true
}

// Unsubscribe disables notifications. Chats without a record are left alone.
func (s *SubscriberStore) Unsubscribe(ctx context.Context, chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[chatID]
	if !ok {
		return false
	}
	if !sub.Enabled {
		return false
	}
	sub.Enabled = false
	s.save()
	metrics.SetActiveSubscribers(s.countEnabled())
	s.log.Info().Int64("chat_id", chatID).Msg("subscriber disabled")
	return true
}

func (s *SubscriberStore) IsSubscribed(ctx context.Context, chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[chatID]
	return ok && sub.Enabled
}

// ActiveSubscribers returns enabled chat IDs in ascending order.
func (s *SubscriberStore) ActiveSubscribers(ctx context.Context) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.subs))
	for id, sub := range s.subs {
		if sub.Enabled {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *SubscriberStore) SubscriberCount(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countEnabled()
}

// countEnabled must be called with the lock held (or before publication).
func (s *SubscriberStore) countEnabled() int {
	n := 0
	for _, sub := range s.subs {
		if sub.Enabled {
			n++
		}
	}
	return n
}
