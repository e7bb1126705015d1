package places_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picky/internal/adapters/places"
	"picky/internal/domain"
)

type memCache struct {
	mu   sync.Mutex
	m    map[string][]byte
	fail bool
}

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return false, errors.New("cache down")
	}
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("cache down")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if c.m == nil {
		c.m = map[string][]byte{}
	}
	c.m[key] = b
	return nil
}

func (c *memCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

type countingPlaces struct {
	searches, details, geocodes, enriches int
	err                                   error
}

func (p *countingPlaces) Search(ctx context.Context, query string, lat, lon float64, radiusM int) ([]domain.Place, error) {
	p.searches++
	if p.err != nil {
		return nil, p.err
	}
	return []domain.Place{{PlaceID: "p1", Name: query}}, nil
}

func (p *countingPlaces) FindByName(ctx context.Context, name string, lat, lon float64, radiusM int) (*domain.Place, error) {
	return nil, nil
}

func (p *countingPlaces) GetDetails(ctx context.Context, placeID string) (*domain.GooglePlacesData, error) {
	p.details++
	return &domain.GooglePlacesData{PlaceID: placeID, Rating: ptr(4.1)}, nil
}

func (p *countingPlaces) Geocode(ctx context.Context, address string) (float64, float64, error) {
	p.geocodes++
	return 1.5, 2.5, nil
}

func (p *countingPlaces) Enrich(ctx context.Context, r domain.Restaurant) domain.Restaurant {
	p.enriches++
	return r
}

func (p *countingPlaces) Ping(ctx context.Context) error { return nil }

func TestCached_ReadThrough(t *testing.T) {
	inner := &countingPlaces{}
	c := places.NewCached(inner, &memCache{}, 60)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ps, err := c.Search(ctx, "Thai restaurant", 1, 2, 500)
		require.NoError(t, err)
		assert.Equal(t, "Thai restaurant", ps[0].Name)

		g, err := c.GetDetails(ctx, "p9")
		require.NoError(t, err)
		assert.Equal(t, 4.1, *g.Rating)

		lat, lon, err := c.Geocode(ctx, "Boston")
		require.NoError(t, err)
		assert.Equal(t, 1.5, lat)
		assert.Equal(t, 2.5, lon)
	}
	assert.Equal(t, 1, inner.searches)
	assert.Equal(t, 1, inner.details)
	assert.Equal(t, 1, inner.geocodes)

	_, err := c.Search(ctx, "Thai restaurant", 1, 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.searches, "radius is part of the key")

	c.Enrich(ctx, domain.Restaurant{Name: "x"})
	c.Enrich(ctx, domain.Restaurant{Name: "x"})
	assert.Equal(t, 2, inner.enriches)
}

func TestCached_BypassesBrokenCache(t *testing.T) {
	inner := &countingPlaces{}
	c := places.NewCached(inner, &memCache{fail: true}, 60)

	for i := 0; i < 2; i++ {
		_, err := c.Search(context.Background(), "q", 1, 2, 3)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.searches)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	inner := &countingPlaces{err: errors.New("quota")}
	c := places.NewCached(inner, &memCache{}, 60)

	_, err := c.Search(context.Background(), "q", 1, 2, 3)
	require.Error(t, err)
	inner.err = nil
	_, err = c.Search(context.Background(), "q", 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.searches)
}
