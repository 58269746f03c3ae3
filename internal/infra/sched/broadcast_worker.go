package sched

import (
	"context"
	"time"

	"bibliotech-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// BroadcastWorker drives the periodic recommendation broadcast. It fires on
// a fixed interval counted from process start; the first cycle runs one full
// interval in, never immediately. Any ticker-or-cron replacement only needs
// to call the use case on schedule.
type BroadcastWorker struct {
	interval time.Duration
	uc       usecase.BroadcastUseCase
	log      *zerolog.Logger
}

func NewBroadcastWorker(interval time.Duration, uc usecase.BroadcastUseCase, logger *zerolog.Logger) *BroadcastWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	compLog := logger.With().Str("component", "BroadcastWorker").Logger()
	return &BroadcastWorker{
		interval: interval,
		uc:       uc,
		log:      &compLog,
	}
}

func (w *BroadcastWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting broadcast worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping broadcast worker")
			return ctx.Err()
		case <-ticker.C:
			w.uc.Run(ctx)
		}
	}
}
