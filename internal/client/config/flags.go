package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophsession/internal/flagx"
)

// parseFlags populates Config fields from command-line flags:
//
//	-a string     base URL of the resource API
//	-t duration   access token TTL
//	-r duration   refresh timeout
//	-i duration   online check interval
//	-s string     storage backend (memory, sqlite, postgres, redis)
//	-d string     storage DSN
//	-l string     log level
//
// Unknown flags are filtered out with flagx.FilterArgs; malformed values panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-r", "-i", "-s", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the API server")
	fs.DurationVar(&cfg.AccessTokenTTL, "t", cfg.AccessTokenTTL, "access token TTL")
	fs.DurationVar(&cfg.RefreshTimeout, "r", cfg.RefreshTimeout, "token refresh timeout")
	fs.DurationVar(&cfg.OnlineCheckInterval, "i", cfg.OnlineCheckInterval, "online check interval")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "storage backend: memory, sqlite, postgres, redis")
	fs.StringVar(&cfg.StorageDSN, "d", cfg.StorageDSN, "storage DSN (file path, postgres DSN or redis URL)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
