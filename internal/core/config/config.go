package config

import (
	"time"

	redisclient "github.com/vietddude/watermark/internal/infra/redis"
	"github.com/vietddude/watermark/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig         `yaml:"server"`
	Logging    LoggingConfig        `yaml:"logging"`
	Database   postgres.Config      `yaml:"database"`
	Connect    postgres.RetryPolicy `yaml:"connect"`
	Redis      redisclient.Config   `yaml:"redis"`
	Checkpoint CheckpointConfig     `yaml:"checkpoint"`
	Source     SourceConfig         `yaml:"source"`
	Extract    ExtractConfig        `yaml:"extract"`
	Load       LoadConfig           `yaml:"load"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"` // 0 = disabled
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// CheckpointConfig selects where the watermark is persisted.
type CheckpointConfig struct {
	Backend string `yaml:"backend"` // file, redis, postgres, memory
	Path    string `yaml:"path"`    // file backend only
	Name    string `yaml:"name"`
}

// SourceConfig selects where records are read from.
type SourceConfig struct {
	Type  string `yaml:"type"`  // static, json, postgres
	Path  string `yaml:"path"`  // json source only
	Table string `yaml:"table"` // postgres source only
}

// ExtractConfig holds cycle driver settings.
type ExtractConfig struct {
	Mode       string        `yaml:"mode"`     // continue, propagate
	Interval   time.Duration `yaml:"interval"` // 0 = single cycle
	StaleAfter time.Duration `yaml:"stale_after"`
}

// LoadConfig holds CSV loader settings.
type LoadConfig struct {
	CSVPath string `yaml:"csv_path"`
	Table   string `yaml:"table"`

	// PreserveCase keeps CSV headers as written; by default they are
	// lowercased to match unquoted column names.
	PreserveCase bool `yaml:"preserve_case"`
}

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	SourceStatic   = "static"
	SourceJSON     = "json"
	SourcePostgres = "postgres"
)
