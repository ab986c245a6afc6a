package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/flagx"
	"github.com/dmitrijs2005/gophsession/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be strings like "10s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	AccessTokenTTL      timex.Duration `json:"access_token_ttl"`
	RefreshTimeout      timex.Duration `json:"refresh_timeout"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	StorageBackend      string         `json:"storage_backend"`
	StorageDSN          string         `json:"storage_dsn"`
	StorageKey          string         `json:"storage_key"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c/-config. Fields
// absent from the file keep their current value. Read and decode errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDur := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	setStr(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setStr(&cfg.StorageBackend, jc.StorageBackend)
	setStr(&cfg.StorageDSN, jc.StorageDSN)
	setStr(&cfg.StorageKey, jc.StorageKey)
	setStr(&cfg.LogLevel, jc.LogLevel)
	setDur(&cfg.AccessTokenTTL, jc.AccessTokenTTL)
	setDur(&cfg.RefreshTimeout, jc.RefreshTimeout)
	setDur(&cfg.RequestTimeout, jc.RequestTimeout)
	setDur(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
}
