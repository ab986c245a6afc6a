package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "GOPHSESSION_"

// loadDotenv loads the file named by -e/-env, or ./.env when present.
// Variables already set in the environment are not overridden.
func loadDotenv() {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	_ = godotenv.Load()
}

// parseEnv overlays cfg with GOPHSESSION_* variables. Malformed durations
// panic, like malformed flags.
func parseEnv(cfg *Config) {
	loadDotenv()

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}

	str("SERVER_ADDR", &cfg.ServerEndpointAddr)
	dur("ACCESS_TOKEN_TTL", &cfg.AccessTokenTTL)
	dur("REFRESH_TIMEOUT", &cfg.RefreshTimeout)
	dur("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur("ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval)
	str("STORAGE_BACKEND", &cfg.StorageBackend)
	str("STORAGE_DSN", &cfg.StorageDSN)
	str("STORAGE_KEY", &cfg.StorageKey)
	str("LOG_LEVEL", &cfg.LogLevel)
}
