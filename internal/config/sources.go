package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/dmitrijs2005/dreamcatcher/internal/flagx"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// parseDotenv applies DREAMCATCHER_ variables from a .env file. A missing
// file is not an error. The process environment is left untouched.
func parseDotenv(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return parseEnv(cfg, vars)
}

// parseFile overlays the config file named by -c/-config. Keys missing from
// the file keep their current values.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}
	data, err := readFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse json config %s: %w", path, err)
		}
	}
	return nil
}

// parseEnv overlays prefixed variables; unset variables change nothing.
func parseEnv(cfg *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// parseFlags populates selected Config fields from command-line flags,
// ignoring flags that belong to other components.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-dsn", "-s", "-r", "-l", "-b"})

	set := flag.NewFlagSet("dreamcatcher", flag.ContinueOnError)
	set.SetOutput(io.Discard)

	set.StringVar(&cfg.StorageDriver, "d", cfg.StorageDriver, "storage driver: sqlite, postgres or memory")
	set.StringVar(&cfg.StorageDSN, "dsn", cfg.StorageDSN, "storage DSN")
	set.StringVar(&cfg.SessionBackend, "s", cfg.SessionBackend, "session backend: store or redis")
	set.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "redis URL")
	set.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	set.StringVar(&cfg.BackupDir, "b", cfg.BackupDir, "backup directory")

	if err := set.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
