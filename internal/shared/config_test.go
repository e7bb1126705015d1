package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for k := range defaults {
		t.Setenv(strings.ToUpper(k), "")
	}
	t.Setenv("CONFIG_FILE", "")

	c := Load()
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "sqlite3", c.DBDriver)
	assert.Equal(t, 10, c.MaxResults)
	assert.Equal(t, 25.0, c.DefaultRadiusKm)
	assert.Equal(t, 100*time.Millisecond, c.EnrichDelay)
	assert.Equal(t, 15*time.Minute, c.CacheTTL)
	assert.True(t, c.SyncEnabled)
	assert.Equal(t, false, c.Summary()["places_configured"])
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("MAX_RECOMMENDATIONS", "3")
	t.Setenv("DEFAULT_SEARCH_RADIUS_KM", "7.5")
	t.Setenv("SYNC_ENABLED", "false")
	t.Setenv("PLACES_API_KEY", "k")

	c := Load()
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, 3, c.MaxResults)
	assert.Equal(t, 7.5, c.DefaultRadiusKm)
	assert.False(t, c.SyncEnabled)
	assert.Equal(t, true, c.Summary()["places_configured"])
}

func TestLoad_ConfigFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picky.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: \":9999\"\nplaces_rps: 2\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PLACES_RPS", "8")

	c := Load()
	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, 8, c.PlacesRPS)
}

