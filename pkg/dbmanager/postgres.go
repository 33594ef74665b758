package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/SecondBureau/adminsgrid/pkg/logger"
)

// postgresProvider connects to PostgreSQL through the pgx stdlib driver.
type postgresProvider struct {
	db   *sql.DB
	name string
	mu   sync.Mutex
}

func (p *postgresProvider) Connect(ctx context.Context, cfg *Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return fmt.Errorf("connection %s: already connected", cfg.Name)
	}

	var lastErr error
	for attempt := 0; attempt < cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt, cfg.RetryDelay, 10*time.Second)
			logger.Info("Retrying PostgreSQL connection: attempt=%d/%d, delay=%v", attempt+1, cfg.RetryAttempts, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		db, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			lastErr = err
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			lastErr = err
			db.Close()
			logger.Warn("Failed to ping PostgreSQL database: %v", err)
			continue
		}

		applyPoolSettings(db, cfg)
		p.db = db
		p.name = cfg.Name
		logger.Info("Connected to PostgreSQL: connection=%s", cfg.Name)
		return nil
	}

	return fmt.Errorf("connecting to PostgreSQL after %d attempts: %w", cfg.RetryAttempts, lastErr)
}

func (p *postgresProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func (p *postgresProvider) HealthCheck(ctx context.Context) error {
	p.mu.Lock()
	db := p.db
	p.mu.Unlock()
	if db == nil {
		return fmt.Errorf("connection %s: not connected", p.name)
	}
	return db.PingContext(ctx)
}

func (p *postgresProvider) DB() (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil, fmt.Errorf("connection %s: not connected", p.name)
	}
	return p.db, nil
}

func (p *postgresProvider) Stats() *ConnectionStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := &ConnectionStats{Name: p.name, Driver: DriverPostgres}
	if p.db == nil {
		return stats
	}
	dbStats := p.db.Stats()
	stats.Connected = true
	stats.OpenConnections = dbStats.OpenConnections
	stats.InUse = dbStats.InUse
	stats.Idle = dbStats.Idle
	stats.WaitCount = dbStats.WaitCount
	stats.WaitDuration = dbStats.WaitDuration
	return stats
}
