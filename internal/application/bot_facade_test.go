package application

import (
	"context"
	"strings"
	"testing"

	"bibliotech-bot/internal/domain/model"
)

type stubCatalog struct {
	books          []model.Book
	recommendation string
	lastQuery      model.CatalogQuery
	bookCalls      int
}

func (s *stubCatalog) FetchBooks(_ context.Context, q model.CatalogQuery) []model.Book {
	s.bookCalls++
	s.lastQuery = q
	return s.books
}

func (s *stubCatalog) FetchRecommendation(_ context.Context, _ []string) string {
	return s.recommendation
}

type stubRegistry struct {
	subscribed map[int64]bool
	count      int
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{subscribed: map[int64]bool{}}
}

func (s *stubRegistry) Subscribe(_ context.Context, chatID int64, _ string) bool {
	if s.subscribed[chatID] {
		return false
	}
	s.subscribed[chatID] = true
	return true
}

func (s *stubRegistry) Unsubscribe(_ context.Context, chatID int64) bool {
	if !s.subscribed[chatID] {
		return false
	}
	s.subscribed[chatID] = false
	return true
}

func (s *stubRegistry) IsSubscribed(_ context.Context, chatID int64) bool {
	return s.subscribed[chatID]
}

func (s *stubRegistry) ActiveSubscribers(_ context.Context) []int64 { return nil }

func (s *stubRegistry) SubscriberCount(_ context.Context) int { return s.count }

func intPtr(v int) *int { return &v }

func sampleBooks() []model.Book {
	return []model.Book{
		{Title: "Don Quijote", Author: "Cervantes", Category: "Novela", Year: intPtr(1605)},
		{Title: "Clean Code", Author: "Robert Martin", Category: "Tecnología"},
		{Title: "Rayuela", Author: "Cortázar", Category: "Novela"},
	}
}

func TestBotFacadeCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("lists books with a bounded page size", func(t *testing.T) {
		cat := &stubCatalog{books: sampleBooks()}
		f := NewBotFacade(cat, newStubRegistry(), 1, nil)

		out := f.HandleCatalog(ctx)
		if cat.lastQuery.Limit != catalogPageSize {
			t.Fatalf("catalog query limit = %d, want %d", cat.lastQuery.Limit, catalogPageSize)
		}
		for _, want := range []string{"Don Quijote", "Cervantes", "(1605)", "Clean Code"} {
			if !strings.Contains(out, want) {
				t.Errorf("catalog reply missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty catalog gets a friendly reply", func(t *testing.T) {
		f := NewBotFacade(&stubCatalog{}, newStubRegistry(), 1, nil)
		out := f.HandleCatalog(ctx)
		if !strings.Contains(out, "No hay libros") {
			t.Fatalf("unexpected empty-catalog reply: %s", out)
		}
	})

	t.Run("search forwards the trimmed term", func(t *testing.T) {
		cat := &stubCatalog{books: sampleBooks()[:1]}
		f := NewBotFacade(cat, newStubRegistry(), 1, nil)

		out := f.HandleSearch(ctx, "  Quijote ")
		if cat.lastQuery.Search != "Quijote" {
			t.Fatalf("search term = %q, want %q", cat.lastQuery.Search, "Quijote")
		}
		if cat.lastQuery.Limit != searchPageSize {
			t.Fatalf("search limit = %d, want %d", cat.lastQuery.Limit, searchPageSize)
		}
		if !strings.Contains(out, "Quijote") {
			t.Fatalf("search reply missing term: %s", out)
		}
	})

	t.Run("search without a term returns usage help", func(t *testing.T) {
		cat := &stubCatalog{}
		f := NewBotFacade(cat, newStubRegistry(), 1, nil)

		out := f.HandleSearch(ctx, "   ")
		if cat.bookCalls != 0 {
			t.Fatalf("expected no catalog call, got %d", cat.bookCalls)
		}
		if !strings.Contains(out, "/buscar") {
			t.Fatalf("usage reply missing command hint: %s", out)
		}
	})

	t.Run("category browse issues a category-filtered query", func(t *testing.T) {
		cat := &stubCatalog{books: sampleBooks()[:1]}
		f := NewBotFacade(cat, newStubRegistry(), 1, nil)

		out := f.HandleCategory(ctx, "Novela")
		if cat.lastQuery.Category != "Novela" {
			t.Fatalf("category = %q, want Novela", cat.lastQuery.Category)
		}
		if cat.lastQuery.Search != "" {
			t.Fatalf("category browse must not use the search filter, got %q", cat.lastQuery.Search)
		}
		if cat.lastQuery.Limit != categoryPageSize {
			t.Fatalf("category limit = %d, want %d", cat.lastQuery.Limit, categoryPageSize)
		}
		for _, want := range []string{"Libros de Novela", "Don Quijote", "Cervantes"} {
			if !strings.Contains(out, want) {
				t.Errorf("category reply missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty category gets a friendly reply", func(t *testing.T) {
		f := NewBotFacade(&stubCatalog{}, newStubRegistry(), 1, nil)
		out := f.HandleCategory(ctx, "Poesía")
		if !strings.Contains(out, "No hay libros en 'Poesía'") {
			t.Fatalf("unexpected empty-category reply: %s", out)
		}
	})
}

func TestBotFacadeText(t *testing.T) {
	ctx := context.Background()

	t.Run("free text is a single-result lookup", func(t *testing.T) {
		cat := &stubCatalog{books: sampleBooks()[:1]}
		f := NewBotFacade(cat, newStubRegistry(), 1, nil)

		out := f.HandleText(ctx, "quijote")
		if cat.lastQuery.Search != "quijote" || cat.lastQuery.Limit != 1 {
			t.Fatalf("text query = %+v, want search quijote limit 1", cat.lastQuery)
		}
		for _, want := range []string{"Don Quijote", "Cervantes", "Novela"} {
			if !strings.Contains(out, want) {
				t.Errorf("text reply missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("no match nudges toward the catalog", func(t *testing.T) {
		f := NewBotFacade(&stubCatalog{}, newStubRegistry(), 1, nil)
		out := f.HandleText(ctx, "xyzzy")
		if !strings.Contains(out, "No encontré 'xyzzy'") || !strings.Contains(out, "/catalogo") {
			t.Fatalf("unexpected no-match reply: %s", out)
		}
	})
}

func TestBotFacadeSubscriptions(t *testing.T) {
	ctx := context.Background()

	t.Run("subscribe then duplicate then unsubscribe", func(t *testing.T) {
		f := NewBotFacade(&stubCatalog{}, newStubRegistry(), 2, nil)

		out := f.HandleSubscribe(ctx, 42, "Ana")
		if !strings.Contains(out, "Suscripción activada") || !strings.Contains(out, "2 hora(s)") {
			t.Fatalf("unexpected subscribe reply: %s", out)
		}
		if out := f.HandleSubscribe(ctx, 42, "Ana"); !strings.Contains(out, "Ya estás suscrito") {
			t.Fatalf("unexpected duplicate-subscribe reply: %s", out)
		}
		if out := f.HandleUnsubscribe(ctx, 42); !strings.Contains(out, "Suscripción cancelada") {
			t.Fatalf("unexpected unsubscribe reply: %s", out)
		}
		if out := f.HandleUnsubscribe(ctx, 42); !strings.Contains(out, "No estabas suscrito") {
			t.Fatalf("unexpected repeat-unsubscribe reply: %s", out)
		}
	})

	t.Run("help reports the subscriber count", func(t *testing.T) {
		reg := newStubRegistry()
		reg.count = 7
		out := NewBotFacade(&stubCatalog{}, reg, 1, nil).HandleHelp(ctx)
		if !strings.Contains(out, "7 usuarios suscritos") {
			t.Fatalf("help reply missing count: %s", out)
		}
	})
}

func TestBotFacadeRecommend(t *testing.T) {
	cats := []string{"Novela", "Poesía"}
	cat := &stubCatalog{recommendation: "Lee Rayuela."}
	out := NewBotFacade(cat, newStubRegistry(), 1, cats).HandleRecommend(context.Background())
	if !strings.Contains(out, "Lee Rayuela.") {
		t.Fatalf("recommendation reply missing suggestion: %s", out)
	}
	if !strings.Contains(out, "Sugerencia de la IA") {
		t.Fatalf("recommendation reply missing header: %s", out)
	}
}
