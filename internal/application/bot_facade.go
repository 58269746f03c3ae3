package application

import (
	"context"
	"fmt"
	"strings"

	"bibliotech-bot/internal/domain/model"
	"bibliotech-bot/internal/domain/ports/adapter"
	"bibliotech-bot/internal/domain/ports/repository"
)

// Page sizes per surface: the full catalog shows more than a targeted
// search or a category browse.
const (
	catalogPageSize  = 10
	searchPageSize   = 5
	categoryPageSize = 5
)

// BotFacade composes the catalog gateway and the subscriber registry into
// high-level bot commands. Methods return ready-to-send Markdown strings so
// the Telegram adapter just forwards them to the chat; expected upstream
// failures surface as friendly texts, never as errors.
type BotFacade struct {
	Catalog       adapter.CatalogService
	Registry      repository.SubscriberRegistry
	IntervalHours int
	Categories    []string
}

func NewBotFacade(
	catalog adapter.CatalogService,
	registry repository.SubscriberRegistry,
	intervalHours int,
	categories []string,
) *BotFacade {
	if intervalHours <= 0 {
		intervalHours = 1
	}
	return &BotFacade{
		Catalog:       catalog,
		Registry:      registry,
		IntervalHours: intervalHours,
		Categories:    categories,
	}
}

// HandleStart returns the welcome text for /start.
func (b *BotFacade) HandleStart(firstName string, chatID int64) string {
	if firstName == "" {
		firstName = "lector/a"
	}
	return fmt.Sprintf(`📚 *¡Bienvenido/a a BiblioTech Pro, %s!*

Soy el asistente virtual de la biblioteca. Puedo ayudarte a:

• 📖 Consultar el catálogo de libros
• 🔍 Buscar títulos específicos
• 🤖 Recomendarte lecturas con IA
• 🔔 Enviarte notificaciones periódicas

*Comandos disponibles:*
/catalogo - Ver libros disponibles
/buscar <término> - Buscar en catálogo
/recomendar - Obtener sugerencia IA
/suscribir - Recibir recomendaciones cada hora
/desuscribir - Dejar de recibir notificaciones
/id - Ver tu Chat ID

📍 *Tu Chat ID:* `+"`%d`", firstName, chatID)
}

// HandleHelp returns the command list for /ayuda and /help.
func (b *BotFacade) HandleHelp(ctx context.Context) string {
	return fmt.Sprintf(`📋 *Comandos Disponibles*

📚 *Catálogo:*
/catalogo - Ver todos los libros
/buscar <término> - Buscar por título/autor
/categorias - Ver categorías disponibles

🤖 *Inteligencia Artificial:*
/recomendar - Obtener recomendación ahora

🔔 *Notificaciones:*
/suscribir - Activar recomendaciones cada %d hora(s)
/desuscribir - Desactivar notificaciones
_(%d usuarios suscritos)_

ℹ️ *Información:*
/id - Mostrar tu Chat ID
/about - Sobre BiblioTech Pro`, b.IntervalHours, b.Registry.SubscriberCount(ctx))
}

// HandleID echoes the chat identifier.
func (b *BotFacade) HandleID(chatID int64, chatType string) string {
	return fmt.Sprintf("🔑 *Chat ID:* `%d`\n📝 *Tipo:* %s", chatID, chatType)
}

// HandleCatalog lists the first page of the catalog.
func (b *BotFacade) HandleCatalog(ctx context.Context) string {
	books := b.Catalog.FetchBooks(ctx, model.CatalogQuery{Limit: catalogPageSize})
	if len(books) == 0 {
		return "📭 No hay libros disponibles."
	}
	var sb strings.Builder
	sb.WriteString("📚 *Catálogo de BiblioTech Pro*\n\n")
	writeBookList(&sb, books)
	return sb.String()
}

// HandleSearch looks up a free-text term in the catalog.
func (b *BotFacade) HandleSearch(ctx context.Context, term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return "🔍 Uso: /buscar <término>\nEjemplo: `/buscar Quijote`"
	}
	books := b.Catalog.FetchBooks(ctx, model.CatalogQuery{Search: term, Limit: searchPageSize})
	if len(books) == 0 {
		return fmt.Sprintf("📭 No se encontraron libros para *%s*.", term)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 *Resultados para \"%s\"*\n\n", term)
	writeBookList(&sb, books)
	return sb.String()
}

// HandleCategories returns the prompt shown above the category buttons.
// The adapter attaches the inline keyboard.
func (b *BotFacade) HandleCategories() string {
	return "📂 *Selecciona una categoría:*"
}

// HandleCategory lists books in one category, answering a browse button.
func (b *BotFacade) HandleCategory(ctx context.Context, category string) string {
	books := b.Catalog.FetchBooks(ctx, model.CatalogQuery{Category: category, Limit: categoryPageSize})
	if len(books) == 0 {
		return fmt.Sprintf("📭 No hay libros en '%s'.", category)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 *Libros de %s:*\n\n", category)
	for _, bk := range books {
		fmt.Fprintf(&sb, "• *%s* - %s\n", bk.Title, bk.Author)
	}
	return sb.String()
}

// HandleRecommend asks the AI for a suggestion right now.
func (b *BotFacade) HandleRecommend(ctx context.Context) string {
	rec := b.Catalog.FetchRecommendation(ctx, b.Categories)
	return "🤖 *Sugerencia de la IA:*\n\n" + rec
}

// HandleSubscribe opts the chat into periodic recommendations.
func (b *BotFacade) HandleSubscribe(ctx context.Context, chatID int64, firstName string) string {
	if b.Registry.Subscribe(ctx, chatID, firstName) {
		return fmt.Sprintf("✅ *¡Suscripción activada!*\nRecibirás recomendaciones cada *%d hora(s)*.", b.IntervalHours)
	}
	return "ℹ️ Ya estás suscrito a las notificaciones."
}

// HandleUnsubscribe opts the chat out.
func (b *BotFacade) HandleUnsubscribe(ctx context.Context, chatID int64) string {
	if b.Registry.Unsubscribe(ctx, chatID) {
		return "🔕 *Suscripción cancelada*"
	}
	return "ℹ️ No estabas suscrito."
}

// HandleAbout describes the bot.
func (b *BotFacade) HandleAbout() string {
	return `📚 *BiblioTech Pro*

Asistente de biblioteca con catálogo en línea y recomendaciones generadas por IA.

Escribe /ayuda para ver los comandos.`
}

// HandleText treats free text as a catalog lookup and shows the best match.
func (b *BotFacade) HandleText(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "💬 Escribe /ayuda para ver los comandos disponibles."
	}
	books := b.Catalog.FetchBooks(ctx, model.CatalogQuery{Search: text, Limit: 1})
	if len(books) == 0 {
		return fmt.Sprintf("🤔 No encontré '%s'. Prueba /catalogo.", text)
	}
	bk := books[0]
	return fmt.Sprintf("📖 *%s*\n✍️ %s\n📂 %s", bk.Title, bk.Author, bk.Category)
}

func writeBookList(sb *strings.Builder, books []model.Book) {
	for _, bk := range books {
		fmt.Fprintf(sb, "• _%s_ - %s", bk.Title, bk.Author)
		if bk.Year != nil {
			fmt.Fprintf(sb, " (%d)", *bk.Year)
		}
		fmt.Fprintf(sb, "\n  🏷 %s\n", bk.Category)
	}
}
