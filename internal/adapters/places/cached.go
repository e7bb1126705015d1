package places

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog/log"

	"picky/internal/domain"
)

// Cached fronts a places client with a read-through cache for searches,
// details and geocoding. Cache errors are logged and bypassed.
type Cached struct {
	inner  domain.PlacesClient
	cache  domain.Cache
	ttlSec int
}

var _ domain.PlacesClient = (*Cached)(nil)

func NewCached(inner domain.PlacesClient, cache domain.Cache, ttlSec int) *Cached {
	if ttlSec <= 0 {
		ttlSec = 3600
	}
	return &Cached{inner: inner, cache: cache, ttlSec: ttlSec}
}

func cacheKey(kind string, parts ...any) string {
	h := sha1.Sum([]byte(fmt.Sprint(parts...)))
	return "places:" + kind + ":" + hex.EncodeToString(h[:8])
}

func (c *Cached) Search(ctx context.Context, query string, lat, lon float64, radiusM int) ([]domain.Place, error) {
	key := cacheKey("search", query, "|", lat, "|", lon, "|", radiusM)
	var out []domain.Place
	if c.lookup(ctx, key, &out) {
		return out, nil
	}
	out, err := c.inner.Search(ctx, query, lat, lon, radiusM)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

func (c *Cached) FindByName(ctx context.Context, name string, lat, lon float64, radiusM int) (*domain.Place, error) {
	return c.inner.FindByName(ctx, name, lat, lon, radiusM)
}

func (c *Cached) GetDetails(ctx context.Context, placeID string) (*domain.GooglePlacesData, error) {
	key := cacheKey("details", placeID)
	var out domain.GooglePlacesData
	if c.lookup(ctx, key, &out) {
		return &out, nil
	}
	g, err := c.inner.GetDetails(ctx, placeID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, g)
	return g, nil
}

func (c *Cached) Geocode(ctx context.Context, address string) (float64, float64, error) {
	key := cacheKey("geocode", address)
	var out [2]float64
	if c.lookup(ctx, key, &out) {
		return out[0], out[1], nil
	}
	lat, lon, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return 0, 0, err
	}
	c.store(ctx, key, [2]float64{lat, lon})
	return lat, lon, nil
}

// Enrich always goes to the provider; its purpose is fresh data.
func (c *Cached) Enrich(ctx context.Context, r domain.Restaurant) domain.Restaurant {
	return c.inner.Enrich(ctx, r)
}

func (c *Cached) Ping(ctx context.Context) error { return c.inner.Ping(ctx) }

func (c *Cached) lookup(ctx context.Context, key string, dst any) bool {
	ok, err := c.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("places cache read failed")
		return false
	}
	return ok
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	if err := c.cache.Set(ctx, key, v, c.ttlSec); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("places cache write failed")
	}
}
