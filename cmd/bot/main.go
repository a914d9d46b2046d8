package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"travel_planner/internal/adapters/observability"
	"travel_planner/internal/adapters/telegram"
	"travel_planner/internal/bootstrap"
	"travel_planner/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_TOKEN is empty")
	}

	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer deps.Close()

	observability.Serve(cfg.MetricsAddr)

	client, err := telegram.New(cfg.TelegramBaseURL, cfg.TelegramToken, cfg.TelegramRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Telegram client")
	}
	me, err := client.GetMe(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("getMe failed")
	}
	if err := client.DeleteWebhook(ctx); err != nil {
		log.Warn().Err(err).Msg("deleteWebhook failed")
	}
	log.Info().
		Str("bot", me.Username).
		Dur("interval", cfg.PollInterval).
		Int("workers", cfg.BotWorkers).
		Msg("bot starting")

	bot := telegram.NewBot(client, deps.Conv)
	poller := telegram.NewPoller(client, bot, cfg.PollInterval, cfg.PollTimeout, cfg.BotWorkers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(gctx) })

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("bot stopped")
		deps.Close()
		os.Exit(1)
	}
	log.Info().Msg("bot stopped")
}
