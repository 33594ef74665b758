package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/SecondBureau/adminsgrid/pkg/logger"
)

// sqliteProvider connects to SQLite through the bun shim driver, which
// picks a cgo-free implementation when cgo is unavailable.
type sqliteProvider struct {
	db   *sql.DB
	name string
	mu   sync.Mutex
}

func (p *sqliteProvider) Connect(ctx context.Context, cfg *Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return fmt.Errorf("connection %s: already connected", cfg.Name)
	}

	db, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return fmt.Errorf("opening SQLite database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		db.Close()
		return fmt.Errorf("pinging SQLite database: %w", err)
	}

	// SQLite handles a single writer; keep the pool to one connection to
	// avoid SQLITE_BUSY under write load.
	db.SetMaxOpenConns(1)

	p.db = db
	p.name = cfg.Name
	logger.Info("Connected to SQLite: connection=%s path=%s", cfg.Name, cfg.DSN)
	return nil
}

func (p *sqliteProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func (p *sqliteProvider) HealthCheck(ctx context.Context) error {
	p.mu.Lock()
	db := p.db
	p.mu.Unlock()
	if db == nil {
		return fmt.Errorf("connection %s: not connected", p.name)
	}
	return db.PingContext(ctx)
}

func (p *sqliteProvider) DB() (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil, fmt.Errorf("connection %s: not connected", p.name)
	}
	return p.db, nil
}

func (p *sqliteProvider) Stats() *ConnectionStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := &ConnectionStats{Name: p.name, Driver: DriverSQLite}
	if p.db == nil {
		return stats
	}
	dbStats := p.db.Stats()
	stats.Connected = true
	stats.OpenConnections = dbStats.OpenConnections
	stats.InUse = dbStats.InUse
	stats.Idle = dbStats.Idle
	return stats
}
