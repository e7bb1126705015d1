package shared

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const Version = "0.3.0"

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	DBDriver string
	DBDSN    string

	RedisAddr string
	RedisDB   int
	RedisPass string

	PlacesBase string
	PlacesKey  string
	PlacesRPS  int
	CacheTTL   time.Duration

	DefaultUserID     string
	MaxResults        int
	DefaultRadiusKm   float64
	SearchConcurrency int
	EnrichDelay       time.Duration
	SyncEnabled       bool
}

var defaults = map[string]any{
	"app_env":                  "prod",
	"http_addr":                ":8080",
	"metrics_addr":             ":9100",
	"db_driver":                "sqlite3",
	"db_dsn":                   "file:picky.db?_foreign_keys=on",
	"redis_addr":               "",
	"redis_password":           "",
	"redis_db":                 0,
	"places_base_url":          "https://maps.googleapis.com/maps/api",
	"places_api_key":           "",
	"places_rps":               5,
	"cache_ttl_seconds":        900,
	"default_user_id":          "default",
	"max_recommendations":      10,
	"default_search_radius_km": 25.0,
	"search_concurrency":       4,
	"enrich_delay_ms":          100,
	"sync_enabled":             true,
}

// Load reads configuration from the environment, optionally layered over the
// file named by CONFIG_FILE (any format viper understands).
func Load() Config {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if f := v.GetString("config_file"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				log.Warn().Err(err).Str("file", f).Msg("config file unreadable, using environment only")
			}
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	c := Config{
		AppEnv:            v.GetString("app_env"),
		HTTPAddr:          v.GetString("http_addr"),
		MetricsAddr:       v.GetString("metrics_addr"),
		DBDriver:          v.GetString("db_driver"),
		DBDSN:             v.GetString("db_dsn"),
		RedisAddr:         v.GetString("redis_addr"),
		RedisDB:           v.GetInt("redis_db"),
		RedisPass:         v.GetString("redis_password"),
		PlacesBase:        v.GetString("places_base_url"),
		PlacesKey:         v.GetString("places_api_key"),
		PlacesRPS:         v.GetInt("places_rps"),
		CacheTTL:          time.Duration(v.GetInt("cache_ttl_seconds")) * time.Second,
		DefaultUserID:     v.GetString("default_user_id"),
		MaxResults:        v.GetInt("max_recommendations"),
		DefaultRadiusKm:   v.GetFloat64("default_search_radius_km"),
		SearchConcurrency: v.GetInt("search_concurrency"),
		EnrichDelay:       time.Duration(v.GetInt("enrich_delay_ms")) * time.Millisecond,
		SyncEnabled:       v.GetBool("sync_enabled"),
	}
	if c.PlacesKey == "" {
		log.Warn().Msg("PLACES_API_KEY is empty; places search and enrichment are disabled")
	}
	return c
}

// Summary is the non-secret part of the config, safe to show in status output.
func (c Config) Summary() map[string]any {
	return map[string]any{
		"app_env":                  c.AppEnv,
		"db_driver":                c.DBDriver,
		"places_configured":        c.PlacesKey != "",
		"cache_enabled":            c.RedisAddr != "",
		"max_recommendations":      c.MaxResults,
		"default_search_radius_km": c.DefaultRadiusKm,
		"sync_enabled":             c.SyncEnabled,
	}
}
