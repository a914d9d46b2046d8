package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "travel_planner/internal/adapters/http_server"
	"travel_planner/internal/adapters/observability"
	"travel_planner/internal/bootstrap"
	"travel_planner/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer deps.Close()

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Conv: deps.Conv, KB: deps.KB})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, cfg.HTTPAddr) })
	if cfg.MetricsAddr != "" && cfg.MetricsAddr != cfg.HTTPAddr {
		observability.Serve(cfg.MetricsAddr)
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("http server failed")
		deps.Close()
		os.Exit(1)
	}
}
