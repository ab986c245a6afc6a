// Package config loads runtime configuration for the gophsession CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed with GOPHSESSION_, optionally loaded
//     from a .env file (-e/-env, default ./.env).
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "http://localhost:8080",
//	  "access_token_ttl": "60s",
//	  "refresh_timeout": "10s",
//	  "request_timeout": "30s",
//	  "online_check_interval": "30s",
//	  "storage_backend": "sqlite",
//	  "storage_dsn": ".gophsession/session.db",
//	  "storage_key": "",
//	  "log_level": "warn"
//	}
package config
