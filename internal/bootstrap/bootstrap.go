// Package bootstrap wires the storage, cache, places and recommendation layers
// from a Config. Every binary builds its dependencies through Build.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"picky/internal/adapters/places"
	redisad "picky/internal/adapters/redis"
	"picky/internal/app"
	"picky/internal/domain"
	"picky/internal/placesync"
	"picky/internal/recommend"
	"picky/internal/shared"
	"picky/internal/storage/sqlstore"
)

type Deps struct {
	Store    *sqlstore.Store
	Cache    *redisad.Cache      // nil without REDIS_ADDR
	Places   domain.PlacesClient // nil without PLACES_API_KEY
	Profiles *recommend.ProfileBuilder
	Engine   *recommend.Engine
	Service  *app.Service
	Syncer   *placesync.Syncer // nil when sync is disabled or places is nil
}

func Build(ctx context.Context, cfg shared.Config) (*Deps, error) {
	store, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")

	d := &Deps{Store: store}

	if cfg.RedisAddr != "" {
		d.Cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := d.Cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, places responses will not be cached")
			_ = d.Cache.Close()
			d.Cache = nil
		}
	}

	if cfg.PlacesKey != "" {
		client, err := places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("places client: %w", err)
		}
		d.Places = client
		if d.Cache != nil {
			d.Places = places.NewCached(client, d.Cache, int(cfg.CacheTTL.Seconds()))
		}
	}

	d.Profiles = recommend.NewProfileBuilder(store)
	d.Engine = recommend.NewEngine(
		d.Profiles,
		recommend.NewAggregator(store, d.Places, cfg.SearchConcurrency),
		recommend.NewScorer(recommend.DefaultWeights()),
	)
	d.Service = app.NewService(store, d.Places, d.Engine, app.Options{
		DefaultUserID:   cfg.DefaultUserID,
		MaxResults:      cfg.MaxResults,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		EnrichDelay:     cfg.EnrichDelay,
		Version:         shared.Version,
		Configuration:   cfg.Summary(),
	})
	if cfg.SyncEnabled && d.Places != nil {
		d.Syncer = placesync.New(store, d.Places, d.Profiles)
	}
	return d, nil
}

func (d *Deps) Close() error {
	if d.Cache != nil {
		_ = d.Cache.Close()
	}
	return d.Store.Close()
}
