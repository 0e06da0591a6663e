package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/dreamcatcher/internal/kv"
	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
	"github.com/dmitrijs2005/dreamcatcher/internal/timex"
	"github.com/dmitrijs2005/dreamcatcher/internal/vfs"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DREAMCATCHER_"

const (
	SessionBackendStore = "store"
	SessionBackendRedis = "redis"

	BackupTargetFile = "file"
	BackupTargetS3   = "s3"
)

// Config holds runtime settings for the Dream Catcher client.
type Config struct {
	StorageDriver string `json:"storage_driver" yaml:"storage_driver" env:"STORAGE_DRIVER"`
	StorageDSN    string `json:"storage_dsn" yaml:"storage_dsn" env:"STORAGE_DSN"`
	KeyPrefix     string `json:"key_prefix" yaml:"key_prefix" env:"KEY_PREFIX"`

	SessionBackend string         `json:"session_backend" yaml:"session_backend" env:"SESSION_BACKEND"`
	RedisURL       string         `json:"redis_url" yaml:"redis_url" env:"REDIS_URL"`
	SessionSecret  string         `json:"session_secret" yaml:"session_secret" env:"SESSION_SECRET"`
	SessionTTL     timex.Duration `json:"session_ttl" yaml:"session_ttl" env:"SESSION_TTL"`

	LogBackend string `json:"log_backend" yaml:"log_backend" env:"LOG_BACKEND"`
	LogLevel   string `json:"log_level" yaml:"log_level" env:"LOG_LEVEL"`
	LogFile    string `json:"log_file" yaml:"log_file" env:"LOG_FILE"`

	BackupTarget string `json:"backup_target" yaml:"backup_target" env:"BACKUP_TARGET"`
	BackupDir    string `json:"backup_dir" yaml:"backup_dir" env:"BACKUP_DIR"`
	S3Bucket     string `json:"s3_bucket" yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Region     string `json:"s3_region" yaml:"s3_region" env:"S3_REGION"`
	S3Endpoint   string `json:"s3_endpoint" yaml:"s3_endpoint" env:"S3_ENDPOINT"`
	S3AccessKey  string `json:"s3_access_key" yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
	S3SecretKey  string `json:"s3_secret_key" yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StorageDriver = kv.DriverSQLite
	c.StorageDSN = "dreamcatcher.db"
	c.KeyPrefix = vfs.DefaultPrefix
	c.SessionBackend = SessionBackendStore
	c.SessionTTL = timex.Duration{Duration: 30 * 24 * time.Hour}
	c.LogBackend = logging.BackendZap
	c.LogLevel = "info"
	c.LogFile = "dreamcatcher.log"
	c.BackupTarget = BackupTargetFile
	c.BackupDir = "backups"
	c.S3Region = "us-east-1"
}

// Load builds a Config from every source in precedence order. args are the
// command-line arguments without the program name.
func Load(args []string) (*Config, error) {
	return load(args, ".env", nil)
}

// load reads the process environment when environ is nil.
func load(args []string, dotenvPath string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseDotenv(cfg, dotenvPath); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations the client cannot start with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case kv.DriverSQLite, kv.DriverPostgres, kv.DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.StorageDriver != kv.DriverMemory && c.StorageDSN == "" {
		return fmt.Errorf("storage driver %s needs a DSN", c.StorageDriver)
	}

	switch c.SessionBackend {
	case SessionBackendStore:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("session backend redis needs a redis URL")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
	if c.SessionTTL.Duration <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}

	switch c.BackupTarget {
	case BackupTargetFile:
		if c.BackupDir == "" {
			return fmt.Errorf("file backups need a backup directory")
		}
	case BackupTargetS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3 backups need a bucket")
		}
	default:
		return fmt.Errorf("unknown backup target %q", c.BackupTarget)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return data, nil
}
