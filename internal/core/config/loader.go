package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/watermark/internal/core/domain"
	"github.com/vietddude/watermark/internal/infra/storage/postgres"
)

// Load reads configuration from a YAML file. A missing file yields the
// defaults, so the tool runs with environment variables alone.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// Expand environment variables in the YAML content
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	// Postgres parts fall back to POSTGRES_* then to local defaults
	db := &cfg.Database
	db.Host = firstNonEmpty(db.Host, os.Getenv("POSTGRES_HOST"), "localhost")
	db.Name = firstNonEmpty(db.Name, os.Getenv("POSTGRES_DB"), "postgres")
	db.User = firstNonEmpty(db.User, os.Getenv("POSTGRES_USER"), "postgres")
	db.Password = firstNonEmpty(db.Password, os.Getenv("POSTGRES_PASSWORD"))
	db.Port = firstNonEmpty(db.Port, os.Getenv("POSTGRES_PORT"), "5432")
	db.SSLMode = firstNonEmpty(db.SSLMode, os.Getenv("POSTGRES_SSLMODE"), "disable")
	db.Driver = firstNonEmpty(db.Driver, postgres.DriverPQ)

	if cfg.Connect.MaxRetries == 0 && cfg.Connect.Delay == 0 {
		cfg.Connect = postgres.DefaultRetryPolicy
	}

	cfg.Checkpoint.Backend = firstNonEmpty(cfg.Checkpoint.Backend, BackendFile)
	cfg.Checkpoint.Path = firstNonEmpty(cfg.Checkpoint.Path, "checkpoint.txt")
	cfg.Checkpoint.Name = firstNonEmpty(cfg.Checkpoint.Name, domain.DefaultCheckpointName)

	cfg.Source.Type = firstNonEmpty(cfg.Source.Type, SourceStatic)
	cfg.Source.Table = firstNonEmpty(cfg.Source.Table, postgres.DefaultRecordTable)

	cfg.Extract.Mode = firstNonEmpty(cfg.Extract.Mode, "continue")

	cfg.Load.CSVPath = firstNonEmpty(cfg.Load.CSVPath, "data/sales.csv")
	cfg.Load.Table = firstNonEmpty(cfg.Load.Table, "sales")

	cfg.Logging.Level = firstNonEmpty(cfg.Logging.Level, "info")
}

func (c *AppConfig) validate() error {
	switch c.Checkpoint.Backend {
	case BackendFile, BackendRedis, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown checkpoint backend %q", c.Checkpoint.Backend)
	}
	if c.Checkpoint.Backend == BackendRedis && c.Redis.URL == "" {
		return fmt.Errorf("checkpoint backend redis requires redis.url")
	}

	switch c.Source.Type {
	case SourceStatic, SourcePostgres:
	case SourceJSON:
		if c.Source.Path == "" {
			return fmt.Errorf("source type json requires source.path")
		}
	default:
		return fmt.Errorf("unknown source type %q", c.Source.Type)
	}

	if c.Connect.MaxRetries < 0 {
		return fmt.Errorf("connect.max_retries must be >= 0")
	}
	if c.Connect.Delay < 0 {
		return fmt.Errorf("connect.delay must be >= 0")
	}
	if c.Extract.Interval < 0 {
		return fmt.Errorf("extract.interval must be >= 0")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
