package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"picky/internal/adapters/observability"
	"picky/internal/bootstrap"
	"picky/internal/placesync"
	"picky/internal/shared"
)

// enricher runs sync sweeps once and exits. With no arguments it re-enriches
// every record; otherwise each argument names a job (recent_changes,
// missing_data, full_resync).
func main() {
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PlacesKey == "" {
		log.Fatal().Msg("PLACES_API_KEY is required for enrichment")
	}
	cfg.SyncEnabled = true

	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer func() { _ = deps.Close() }()

	log.Info().Str("base", cfg.PlacesBase).Int("rps", cfg.PlacesRPS).Msg("enricher starting")

	failed := false
	report := func(rep placesync.Report, err error) {
		if err != nil {
			failed = true
			log.Warn().Err(err).Str("job", rep.Job).Msg("sync failed")
			return
		}
		log.Info().
			Str("job", rep.Job).
			Int("candidates", rep.Candidates).
			Int("enriched", rep.Enriched).
			Int("updated", rep.Updated).
			Int("failed", rep.Failed).
			Msg("sync ok")
	}

	jobs := os.Args[1:]
	if len(jobs) == 0 {
		report(deps.Syncer.ManualSync(ctx))
	}
	for _, name := range jobs {
		job, ok := placesync.JobByName(name)
		if !ok {
			log.Error().Str("job", name).Msg("unknown job")
			failed = true
			continue
		}
		report(deps.Syncer.RunJob(ctx, job))
	}

	log.Info().Msg("enrichment completed")
	if failed {
		_ = deps.Close()
		os.Exit(1)
	}
}
