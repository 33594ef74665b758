package dbmanager

import (
	"context"
	"database/sql"
	"math"
	"time"
)

// ConnectionStats reports pool statistics for a connection.
type ConnectionStats struct {
	Name            string
	Driver          string
	Connected       bool
	OpenConnections int
	InUse           int
	Idle            int
	WaitCount       int64
	WaitDuration    time.Duration
}

// provider opens and owns the underlying *sql.DB for one driver.
type provider interface {
	Connect(ctx context.Context, cfg *Config) error
	Close() error
	HealthCheck(ctx context.Context) error
	DB() (*sql.DB, error)
	Stats() *ConnectionStats
}

func newProvider(driver string) provider {
	switch driver {
	case DriverSQLite:
		return &sqliteProvider{}
	default:
		return &postgresProvider{}
	}
}

// calculateBackoff grows the delay exponentially with the attempt number,
// capped at maxDelay.
func calculateBackoff(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt-1)))
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

// applyPoolSettings configures the connection pool from the config.
func applyPoolSettings(db *sql.DB, cfg *Config) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}
