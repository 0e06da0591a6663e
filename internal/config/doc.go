// Package config loads runtime configuration for the Dream Catcher client.
//
// Sources & precedence (later wins)
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, if present.
//  3. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  4. Environment variables prefixed with DREAMCATCHER_.
//  5. Command-line flags.
//
// Supported flags
//
//	-d string     storage driver: sqlite, postgres or memory
//	-dsn string   storage DSN (SQLite path or PostgreSQL URL)
//	-s string     session backend: store or redis
//	-r string     redis URL for the redis session backend
//	-l string     log level: debug, info, warn, error
//	-b string     backup directory
//
// # File schema
//
// Durations use timex.Duration, so "720h" and integer nanoseconds both work:
//
//	{
//	  "storage_driver": "sqlite",
//	  "storage_dsn": "dreamcatcher.db",
//	  "session_backend": "redis",
//	  "redis_url": "redis://localhost:6379/0",
//	  "session_ttl": "720h",
//	  "backup_target": "s3",
//	  "s3_bucket": "dreams"
//	}
//
// The environment variable of each field is its file key upper-cased with the
// prefix, e.g. DREAMCATCHER_STORAGE_DSN.
package config
