package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"picky/internal/adapters/mcp"
	"picky/internal/adapters/observability"
	"picky/internal/bootstrap"
	"picky/internal/shared"
)

func main() {
	cfg := shared.Load()

	// stdout carries the protocol, so logs go to stderr
	log.Logger = observability.NewLogger(cfg.AppEnv, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer func() { _ = deps.Close() }()

	log.Info().Str("version", shared.Version).Msg("MCP server ready on stdio")
	if err := mcp.NewServer(deps.Service, shared.Version).Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("MCP server stopped")
		os.Exit(1)
	}
}
