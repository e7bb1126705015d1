package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picky/internal/adapters/places"
	"picky/internal/shared"
	"picky/internal/storage/sqlstore"
)

func baseConfig() shared.Config {
	return shared.Config{
		DBDriver:          sqlstore.DriverSQLite,
		DBDSN:             ":memory:",
		PlacesBase:        places.DefaultBaseURL,
		PlacesRPS:         5,
		SearchConcurrency: 2,
		SyncEnabled:       true,
	}
}

func TestBuild_WithoutPlaces(t *testing.T) {
	d, err := Build(context.Background(), baseConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	assert.Nil(t, d.Places)
	assert.Nil(t, d.Cache)
	assert.Nil(t, d.Syncer, "sync needs a places client")

	res := d.Service.TestConnections(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, "not configured", res.Data.Places)
}

func TestBuild_CachedPlacesAndSync(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.PlacesKey = "k"
	cfg.RedisAddr = mr.Addr()

	d, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NotNil(t, d.Cache)
	_, cached := d.Places.(*places.Cached)
	assert.True(t, cached)
	assert.NotNil(t, d.Syncer)
}

func TestBuild_UnreachableRedisDegrades(t *testing.T) {
	cfg := baseConfig()
	cfg.PlacesKey = "k"
	cfg.RedisAddr = "127.0.0.1:1"

	d, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	assert.Nil(t, d.Cache)
	_, plain := d.Places.(*places.Client)
	assert.True(t, plain)
}

func TestBuild_BadDriver(t *testing.T) {
	cfg := baseConfig()
	cfg.DBDriver = "postgres"
	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}
