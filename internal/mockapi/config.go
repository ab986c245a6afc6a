package mockapi

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophsession/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	defaultAddr     = "localhost:8080"
	defaultLogLevel = "info"
)

type Config struct {
	Addr     string
	LogLevel string
}

// LoadConfig reads, in increasing priority: defaults, .env, environment
// (GOPHSESSION_MOCKAPI_ADDR, GOPHSESSION_LOG_LEVEL), command line flags.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{Addr: defaultAddr, LogLevel: defaultLogLevel}
	if v := os.Getenv("GOPHSESSION_MOCKAPI_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("GOPHSESSION_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	parseFlags(cfg, flagx.FilterArgs(os.Args[1:], []string{"-a", "-l"}))
	return cfg
}

func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("mockapi", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "listen address host:port")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	_ = fs.Parse(args)
}
