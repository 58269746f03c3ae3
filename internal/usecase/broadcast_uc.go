package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bibliotech-bot/internal/domain/model"
	"bibliotech-bot/internal/domain/ports/adapter"
	"bibliotech-bot/internal/domain/ports/repository"
	"bibliotech-bot/internal/infra/logging"
	"bibliotech-bot/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Compile-time check
var _ BroadcastUseCase = (*broadcastUC)(nil)

// featuredLimit is how many catalog entries the periodic message shows.
const featuredLimit = 3

type BroadcastUseCase interface {
	// Run executes one broadcast cycle: snapshot the active subscribers,
	// build a single message, fan it out. Returns the sent/failed tally.
	// Per-recipient failures never abort the cycle.
	Run(ctx context.Context) (sent, failed int)
}

type broadcastUC struct {
	registry   repository.SubscriberRegistry
	catalog    adapter.CatalogService
	sender     adapter.MessageSender
	limiter    *rate.Limiter
	categories []string
	log        *zerolog.Logger

	now func() time.Time // test hook for the message header
}

// NewBroadcastUseCase wires the periodic recommendation broadcast.
// sendDelay paces consecutive sends to respect Telegram's per-second
// ceiling; categories seed the AI suggestion.
func NewBroadcastUseCase(
	registry repository.SubscriberRegistry,
	catalog adapter.CatalogService,
	sender adapter.MessageSender,
	sendDelay time.Duration,
	categories []string,
	logger *zerolog.Logger,
) BroadcastUseCase {
	if sendDelay <= 0 {
		sendDelay = 100 * time.Millisecond
	}
	compLog := logger.With().Str("component", "Broadcast").Logger()
	return &broadcastUC{
		registry:   registry,
		catalog:    catalog,
		sender:     sender,
		limiter:    rate.NewLimiter(rate.Every(sendDelay), 1),
		categories: categories,
		log:        &compLog,
		now:        time.Now,
	}
}

func (uc *broadcastUC) Run(ctx context.Context) (sent, failed int) {
	defer metrics.IncBroadcastCycle()

	recipients := uc.registry.ActiveSubscribers(ctx)
	if len(recipients) == 0 {
		uc.log.Info().Msg("no active subscribers, skipping cycle")
		return 0, 0
	}

	cycle := uuid.NewString()
	log := uc.log.With().Str("cycle", cycle).Logger()
	log.Info().Int("recipients", len(recipients)).Msg("broadcast cycle started")

	// One message body shared by everyone this cycle.
	recommendation := uc.catalog.FetchRecommendation(ctx, uc.categories)
	books := uc.catalog.FetchBooks(ctx, model.CatalogQuery{Limit: featuredLimit})
	message := uc.buildMessage(recommendation, books)

	for _, chatID := range recipients {
		if err := uc.limiter.Wait(ctx); err != nil {
			log.Warn().Err(err).Int("remaining", len(recipients)-sent-failed).
				Msg("broadcast cycle aborted")
			break
		}
		sendCtx := logging.WithChatID(ctx, chatID)
		if err := uc.sender.SendMessage(sendCtx, chatID, message); err != nil {
			failed++
			logging.With(sendCtx, &log).Error().Err(err).Msg("broadcast send failed")
			continue
		}
		sent++
	}

	metrics.AddBroadcastSends(sent, failed)
	log.Info().Int("sent", sent).Int("failed", failed).Msg("broadcast cycle finished")
	return sent, failed
}

func (uc *broadcastUC) buildMessage(recommendation string, books []model.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 *Recomendación BiblioTech* (%s)\n\n", uc.now().Format("15:04"))
	sb.WriteString("🤖 *Sugerencia de la IA:*\n")
	sb.WriteString(recommendation)
	sb.WriteString("\n")
	if len(books) > 0 {
		sb.WriteString("\n📖 *Libros destacados:*\n")
		for _, b := range books {
			fmt.Fprintf(&sb, "• _%s_ - %s\n", b.Title, b.Author)
		}
	}
	sb.WriteString("\n_Usa /desuscribir para dejar de recibir estas notificaciones_")
	return sb.String()
}
