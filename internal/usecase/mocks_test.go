package usecase

import (
	"context"
	"sync"

	"bibliotech-bot/internal/domain/model"

	"github.com/rs/zerolog"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockRegistry is a canned subscriber registry.
type mockRegistry struct {
	active []int64
}

func (m *mockRegistry) Subscribe(ctx context.Context, chatID int64, username string) bool {
	return false
}
func (m *mockRegistry) Unsubscribe(ctx context.Context, chatID int64) bool  { return false }
func (m *mockRegistry) IsSubscribed(ctx context.Context, chatID int64) bool { return false }
func (m *mockRegistry) ActiveSubscribers(ctx context.Context) []int64       { return m.active }
func (m *mockRegistry) SubscriberCount(ctx context.Context) int             { return len(m.active) }

// mockCatalog records calls and returns canned data.
type mockCatalog struct {
	mu              sync.Mutex
	books           []model.Book
	recommendation  string
	fetchBooksCalls []model.CatalogQuery
	fetchRecCalls   [][]string
}

func (m *mockCatalog) FetchBooks(ctx context.Context, q model.CatalogQuery) []model.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchBooksCalls = append(m.fetchBooksCalls, q)
	return m.books
}

func (m *mockCatalog) FetchRecommendation(ctx context.Context, categories []string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchRecCalls = append(m.fetchRecCalls, categories)
	return m.recommendation
}

// mockSender captures sends and can fail selected chats.
type mockSender struct {
	mu       sync.Mutex
	sent     []int64
	messages []string
	failFunc func(chatID int64) error
}

func (m *mockSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFunc != nil {
		if err := m.failFunc(chatID); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, chatID)
	m.messages = append(m.messages, text)
	return nil
}
