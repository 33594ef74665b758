package dbmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/SecondBureau/adminsgrid/pkg/config"
)

var (
	// ErrInvalidConfiguration is returned when a connection config is incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedDriver is returned for drivers other than postgres and sqlite.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrUnsupportedORM is returned for ORM selections other than bun and gorm.
	ErrUnsupportedORM = errors.New("unsupported orm")
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ORMBun  = "bun"
	ORMGorm = "gorm"
)

// Config describes one database connection.
type Config struct {
	// Name identifies the connection in logs and errors.
	Name string

	// Driver is postgres or sqlite.
	Driver string

	// DSN is the driver connection string, or the file path for sqlite.
	DSN string

	// ORM selects the adapter wrapped around the connection: bun or gorm.
	ORM string

	// Debug enables per-statement query logging on the adapter.
	Debug bool

	ConnectTimeout  time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// FromDatabaseConfig builds a connection Config from the application
// config section.
func FromDatabaseConfig(dc config.DatabaseConfig) Config {
	return Config{
		Name:   "default",
		Driver: dc.Driver,
		DSN:    dc.DSN,
		ORM:    dc.ORM,
		Debug:  dc.Debug,
	}
}

// Validate checks the config and fills in defaults.
func (c *Config) Validate() error {
	if c.Name == "" {
		c.Name = "default"
	}
	switch c.Driver {
	case DriverPostgres, DriverSQLite:
	case "":
		return fmt.Errorf("%w: driver is required", ErrInvalidConfiguration)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("%w: dsn is required", ErrInvalidConfiguration)
	}
	switch c.ORM {
	case ORMBun, ORMGorm:
	case "":
		c.ORM = ORMBun
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedORM, c.ORM)
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	return nil
}
