// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bibliotech-bot/internal/application"
	"bibliotech-bot/internal/config"
	"bibliotech-bot/internal/infra/catalog"
	"bibliotech-bot/internal/infra/logging"
	"bibliotech-bot/internal/infra/metrics"
	"bibliotech-bot/internal/infra/sched"
	"bibliotech-bot/internal/infra/store"
	"bibliotech-bot/internal/infra/telegram"
	"bibliotech-bot/internal/infra/web"
	"bibliotech-bot/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, verbose)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Catalog gateway ----
	transport := catalog.NewTransport(cfg.API.BaseURL, cfg.API.ConnectTimeout)
	defer transport.CloseIdleConnections()
	gateway := catalog.NewGateway(transport, catalog.Options{
		CacheTTL:       cfg.Cache.TTL,
		CacheCapacity:  cfg.Cache.Capacity,
		CatalogTimeout: cfg.API.RequestTimeout,
		AITimeout:      cfg.API.AITimeout,
	}, logger)

	// ---- Subscriber registry ----
	registry := store.NewSubscriberStore(cfg.Store.Path, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(gateway, registry, cfg.Broadcast.IntervalHours, cfg.Broadcast.Categories)

	// ---- Telegram ----
	botAdapter, err := telegram.NewRealTelegramBotAdapter(&cfg.Bot, facade, cfg.Bot.Workers, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram adapter")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Broadcast worker ----
	broadcastUC := usecase.NewBroadcastUseCase(
		registry, gateway, botAdapter,
		cfg.Broadcast.SendDelay, cfg.Broadcast.Categories, logger,
	)
	worker := sched.NewBroadcastWorker(time.Duration(cfg.Broadcast.IntervalHours)*time.Hour, broadcastUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Ops server ----
	opsServer := web.NewServer(cfg, registry, logger)
	go func() {
		if err := opsServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	botAdapter.StopPolling()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown")
	}
}
