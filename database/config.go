package database

import (
	"fmt"
	"strings"
	"time"
)

// DriverSQLite is the only built-in driver.
const DriverSQLite = "sqlite"

// Config describes the SQL speaker store connection.
type Config struct {
	// Driver selects the gorm dialector. Defaults to sqlite.
	Driver string `yaml:"driver" mapstructure:"driver"`

	// DSN is a file path or sqlite URI, e.g.
	// "file:speakers?mode=memory&cache=shared".
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	// MaxOpenConns caps the pool. sqlite serializes writers, so the default
	// is a single connection.
	MaxOpenConns int `yaml:"max_open_conns" mapstructure:"max_open_conns"`

	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`

	// BusyTimeout is how long sqlite waits on a locked database before
	// returning SQLITE_BUSY.
	BusyTimeout time.Duration `yaml:"busy_timeout" mapstructure:"busy_timeout"`

	// JournalMode is applied with PRAGMA journal_mode (wal, delete, memory).
	JournalMode string `yaml:"journal_mode" mapstructure:"journal_mode"`

	// ConnectAttempts bounds the retries in Open.
	ConnectAttempts int `yaml:"connect_attempts" mapstructure:"connect_attempts"`

	// SlowQuery logs statements slower than this at warn level.
	SlowQuery time.Duration `yaml:"slow_query" mapstructure:"slow_query"`

	// LogLevel is the statement log level: silent, error, warn or info.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.DSN == "" {
		c.DSN = "speakers.db"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 1
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
	if c.JournalMode == "" {
		c.JournalMode = "wal"
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = 3
	}
	if c.SlowQuery <= 0 {
		c.SlowQuery = 200 * time.Millisecond
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks the settings Open depends on.
func (c *Config) Validate() error {
	if c.Driver != DriverSQLite {
		return fmt.Errorf("database: driver %q is not supported (supported: %s)", c.Driver, DriverSQLite)
	}
	if c.DSN == "" {
		return fmt.Errorf("database: dsn is required")
	}
	switch strings.ToLower(c.JournalMode) {
	case "wal", "delete", "truncate", "memory":
	default:
		return fmt.Errorf("database: journal_mode %q is not supported", c.JournalMode)
	}
	switch strings.ToLower(c.LogLevel) {
	case "silent", "error", "warn", "info":
	default:
		return fmt.Errorf("database: log_level %q is not supported", c.LogLevel)
	}
	return nil
}
