package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	server "picky/internal/adapters/http_server"
	"picky/internal/adapters/observability"
	"picky/internal/bootstrap"
	"picky/internal/shared"
	"picky/internal/supervisor"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer func() { _ = deps.Close() }()

	reg := observability.InitRegistry()
	srv := server.New()
	if cfg.MetricsAddr == "" {
		srv.Mount("/metrics", observability.MetricsHandler(reg))
	}
	srv.MountHandlers(&server.Handlers{S: deps.Service, Sync: deps.Syncer})

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.AddAPIService(supervisor.NewHTTPServerService("api", srv.HTTPServer(cfg.HTTPAddr, ctx), 0))
	if cfg.MetricsAddr != "" {
		tree.AddAPIService(supervisor.NewHTTPServerService("metrics", observability.MetricsServer(cfg.MetricsAddr, reg), 0))
	}
	if deps.Syncer != nil {
		for _, svc := range deps.Syncer.Services() {
			tree.AddSyncService(svc)
		}
		log.Info().Int("jobs", len(deps.Syncer.Jobs())).Msg("background sync enabled")
	}

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("metrics", cfg.MetricsAddr).
		Str("version", shared.Version).
		Msg("API listening")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("supervisor stopped")
	}
	log.Info().Msg("shutdown complete")
}
