package config

import (
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/storage"
)

// Config holds runtime settings for the gophsession CLI.
type Config struct {
	// ServerEndpointAddr is the base URL of the resource API.
	ServerEndpointAddr string
	// AccessTokenTTL is the validity window of issued access tokens.
	AccessTokenTTL time.Duration
	// RefreshTimeout bounds a single token refresh.
	RefreshTimeout time.Duration
	// RequestTimeout bounds an API call including its retry.
	RequestTimeout time.Duration
	// OnlineCheckInterval is how often the CLI pings the server. Zero disables it.
	OnlineCheckInterval time.Duration

	StorageBackend string
	StorageDSN     string
	// StorageKey, when set, encrypts stored values with a key derived from it.
	StorageKey string

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:8080"
	c.AccessTokenTTL = 60 * time.Second
	c.RefreshTimeout = 10 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 30 * time.Second
	c.StorageBackend = storage.BackendSQLite
	c.StorageDSN = ".gophsession/session.db"
	c.StorageKey = ""
	c.LogLevel = "warn"
}

// Storage returns the storage settings.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Backend:    c.StorageBackend,
		DSN:        c.StorageDSN,
		Passphrase: c.StorageKey,
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and .env), JSON (if present) and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
