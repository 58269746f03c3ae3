package adapter

import (
	"context"

	"bibliotech-bot/internal/domain/model"
)

// CatalogService fronts the library backend and the AI recommendation
// endpoint. Implementations are fail-soft: expected upstream failures come
// back as an empty slice or a fallback string, never as an error.
type CatalogService interface {
	// FetchBooks returns catalog entries matching the query, or an empty
	// slice when the upstream is unavailable.
	FetchBooks(ctx context.Context, q model.CatalogQuery) []model.Book
	// FetchRecommendation asks the AI service for a suggestion over the
	// given categories. Never cached; returns a fixed fallback text when
	// the upstream is unavailable.
	FetchRecommendation(ctx context.Context, categories []string) string
}
