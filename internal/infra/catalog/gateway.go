package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"bibliotech-bot/internal/domain/model"
	"bibliotech-bot/internal/domain/ports/adapter"
	"bibliotech-bot/internal/infra/logging"
	"bibliotech-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ adapter.CatalogService = (*Gateway)(nil)

// Fallback text when the AI upstream stays down after retries. The reply is
// user-visible, so it stays in the product language.
const RecommendationFallback = "El servicio de IA no está disponible temporalmente."

// Text used when the AI answers but with an empty suggestion.
const recommendationEmpty = "No hay recomendaciones disponibles."

// Options bundles the gateway knobs. Zero values fall back to the
// production defaults.
type Options struct {
	CacheTTL       time.Duration
	CacheCapacity  int
	CatalogTimeout time.Duration
	AITimeout      time.Duration
}

func (o *Options) applyDefaults() {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.CacheCapacity <= 0 {
		o.CacheCapacity = 128
	}
	if o.CatalogTimeout <= 0 {
		o.CatalogTimeout = 30 * time.Second
	}
	if o.AITimeout <= 0 {
		o.AITimeout = 45 * time.Second
	}
}

// Gateway fronts the catalog and recommendation endpoints, composing the
// transport, the two retry policies, and the result cache. Both operations
// are fail-soft: a terminal upstream failure degrades into an empty slice or
// a fallback string, never into an error for the caller.
type Gateway struct {
	transport *Transport
	cache     *resultCache
	books     RetryPolicy
	recs      RetryPolicy
	opts      Options
	log       *zerolog.Logger
}

func NewGateway(t *Transport, opts Options, logger *zerolog.Logger) *Gateway {
	opts.applyDefaults()
	compLog := logger.With().Str("component", "CatalogGateway").Logger()
	return &Gateway{
		transport: t,
		cache:     newResultCache(opts.CacheTTL, opts.CacheCapacity),
		// Catalog lookups: 3 attempts, 1s..10s exponential backoff.
		books: RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second},
		// The recommendation backs an interactive command; fewer, shorter
		// retries so a dead AI service does not freeze the chat.
		recs: RetryPolicy{MaxAttempts: 2, BaseDelay: time.Second, MaxDelay: 3 * time.Second},
		opts: opts,
		log:  &compLog,
	}
}

// FetchBooks returns catalog entries matching q, serving repeats from the
// result cache. Terminal failures are logged and yield an empty slice.
func (g *Gateway) FetchBooks(ctx context.Context, q model.CatalogQuery) []model.Book {
	defer logging.TraceDuration(g.log, "Gateway.FetchBooks")()
	if books, ok := g.cache.get(q); ok {
		metrics.IncCacheRequest("books", "hit")
		return books
	}
	metrics.IncCacheRequest("books", "miss")

	var books []model.Book
	err := g.books.Do(ctx, g.log, "libros", func(ctx context.Context) error {
		params := url.Values{}
		if q.Search != "" {
			params.Set("search", q.Search)
		}
		if q.Category != "" {
			params.Set("categoria", q.Category)
		}
		if q.Limit > 0 {
			params.Set("size", strconv.Itoa(q.Limit))
		}
		var raw json.RawMessage
		if err := g.transport.GetJSON(ctx, "/libros", params, g.opts.CatalogTimeout, &raw); err != nil {
			return err
		}
		parsed, err := parseBooksResponse(raw)
		if err != nil {
			return err
		}
		books = parsed
		return nil
	})
	if err != nil {
		g.log.Error().Err(err).Str("search", q.Search).Str("category", q.Category).
			Int("limit", q.Limit).Msg("catalog unavailable, returning empty list")
		return []model.Book{}
	}
	g.cache.put(q, books)
	return books
}

// FetchRecommendation asks the AI endpoint for a suggestion. Responses are
// deliberately not cached so repeated calls vary. On terminal failure a
// fixed fallback text is returned.
func (g *Gateway) FetchRecommendation(ctx context.Context, categories []string) string {
	defer logging.TraceDuration(g.log, "Gateway.FetchRecommendation")()
	var rec string
	err := g.recs.Do(ctx, g.log, "recomendaciones", func(ctx context.Context) error {
		body := map[string][]string{"categorias": categories}
		var resp struct {
			Recommendation string `json:"recomendacion"`
		}
		if err := g.transport.PostJSON(ctx, "/recomendaciones", body, g.opts.AITimeout, &resp); err != nil {
			return err
		}
		rec = resp.Recommendation
		return nil
	})
	if err != nil {
		g.log.Error().Err(err).Strs("categories", categories).Msg("recommendation unavailable, using fallback")
		return RecommendationFallback
	}
	if rec == "" {
		return recommendationEmpty
	}
	return rec
}

// CacheLen reports how many queries are currently memoized.
func (g *Gateway) CacheLen() int { return g.cache.len() }

// parseBooksResponse accepts either a bare JSON array of books or the page
// object {content, totalElements, totalPages} the backend returns for
// paginated queries.
func parseBooksResponse(raw json.RawMessage) ([]model.Book, error) {
	var books []model.Book
	if err := json.Unmarshal(raw, &books); err == nil {
		normalize(books)
		return books, nil
	}
	var page struct {
		Content       []model.Book `json:"content"`
		TotalElements int64        `json:"totalElements"`
		TotalPages    int          `json:"totalPages"`
	}
	if err := json.Unmarshal(raw, &page); err != nil || page.Content == nil {
		return nil, fmt.Errorf("unexpected catalog response shape")
	}
	normalize(page.Content)
	return page.Content, nil
}

func normalize(books []model.Book) {
	for i := range books {
		books[i].Normalize()
	}
}
