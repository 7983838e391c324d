package config

import "time"

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Postgres adapters.
const (
	AdapterPGXPool = "pgxpool"
	AdapterSQLDB   = "sqldb"
	AdapterSQLX    = "sqlx"
)

// Config holds all lendingctl configuration.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Log      LogConfig      `mapstructure:"log"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// StoreConfig selects the event log engine.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite memory"`
}

// PostgresConfig is used when Store.Driver is "postgres".
type PostgresConfig struct {
	DSN        string `mapstructure:"dsn"`
	ReplicaDSN string `mapstructure:"replica_dsn" validate:"omitempty,excluded_unless=Adapter pgxpool"`
	Adapter    string `mapstructure:"adapter" validate:"required,oneof=pgxpool sqldb sqlx"`
	MaxConns   int32  `mapstructure:"max_conns" validate:"gte=1,lte=500"`
	MinConns   int32  `mapstructure:"min_conns" validate:"gte=0,ltefield=MaxConns"`
}

// SQLiteConfig is used when Store.Driver is "sqlite".
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// RetryConfig tunes the command handlers' retry on concurrency conflicts.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1,lte=20"`
	BaseDelay   time.Duration `mapstructure:"base_delay" validate:"gte=0s,lte=10s"`
}

// SweepConfig tunes the periodic sweeper.
type SweepConfig struct {
	Interval    time.Duration `mapstructure:"interval" validate:"gte=1s"`
	Concurrency int           `mapstructure:"concurrency" validate:"gte=1,lte=64"`
}

// MetricsConfig configures the sweeper's /metrics endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}
