package dbmanager

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
	"gorm.io/gorm"

	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"

	"github.com/SecondBureau/adminsgrid/pkg/common"
	"github.com/SecondBureau/adminsgrid/pkg/common/adapters/database"
	"github.com/SecondBureau/adminsgrid/pkg/logger"
)

// Connection is one live database connection with its ORM adapter.
type Connection struct {
	cfg      Config
	provider provider
	adapter  common.Database
}

// Name returns the connection name.
func (c *Connection) Name() string { return c.cfg.Name }

// Database returns the ORM adapter for query building.
func (c *Connection) Database() common.Database { return c.adapter }

// HealthCheck pings the underlying connection.
func (c *Connection) HealthCheck(ctx context.Context) error {
	return c.provider.HealthCheck(ctx)
}

// Stats reports pool statistics.
func (c *Connection) Stats() *ConnectionStats {
	return c.provider.Stats()
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	return c.provider.Close()
}

// Open validates the config, connects with retries, and wraps the
// connection in the configured ORM adapter.
func Open(ctx context.Context, cfg Config) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := newProvider(cfg.Driver)
	if err := p.Connect(ctx, &cfg); err != nil {
		return nil, err
	}

	adapter, err := buildAdapter(&cfg, p)
	if err != nil {
		p.Close()
		return nil, err
	}

	return &Connection{cfg: cfg, provider: p, adapter: adapter}, nil
}

func buildAdapter(cfg *Config, p provider) (common.Database, error) {
	sqldb, err := p.DB()
	if err != nil {
		return nil, err
	}

	switch cfg.ORM {
	case ORMGorm:
		var dialector gorm.Dialector
		if cfg.Driver == DriverSQLite {
			dialector = &gormsqlite.Dialector{Conn: sqldb}
		} else {
			dialector = gormpostgres.New(gormpostgres.Config{Conn: sqldb})
		}
		gdb, err := gorm.Open(dialector, &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("opening gorm over %s: %w", cfg.Driver, err)
		}
		adapter := database.NewGormAdapter(gdb)
		if cfg.Debug {
			adapter.EnableQueryDebug()
		}
		return adapter, nil
	default:
		var dialect schema.Dialect = pgdialect.New()
		if cfg.Driver == DriverSQLite {
			dialect = sqlitedialect.New()
		}
		adapter := database.NewBunAdapter(bun.NewDB(sqldb, dialect))
		if cfg.Debug {
			adapter.EnableQueryDebug()
		}
		return adapter, nil
	}
}

// Manager holds named connections.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	defaultName string
}

// NewManager creates an empty connection manager.
func NewManager() *Manager {
	return &Manager{connections: make(map[string]*Connection)}
}

// Add opens a connection and registers it. The first connection added
// becomes the default.
func (m *Manager) Add(ctx context.Context, cfg Config) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, exists := m.connections[cfg.Name]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("connection %q already exists", cfg.Name)
	}
	m.mu.Unlock()

	conn, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.connections[cfg.Name]; exists {
		conn.Close()
		return nil, fmt.Errorf("connection %q already exists", cfg.Name)
	}
	m.connections[cfg.Name] = conn
	if m.defaultName == "" {
		m.defaultName = cfg.Name
	}
	return conn, nil
}

// Get returns a registered connection by name.
func (m *Manager) Get(name string) (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, exists := m.connections[name]
	if !exists {
		return nil, fmt.Errorf("connection %q not found", name)
	}
	return conn, nil
}

// GetDefault returns the default connection.
func (m *Manager) GetDefault() (*Connection, error) {
	m.mu.RLock()
	name := m.defaultName
	m.mu.RUnlock()
	if name == "" {
		return nil, fmt.Errorf("no connections registered")
	}
	return m.Get(name)
}

// HealthCheck pings every registered connection and returns the first
// failure.
func (m *Manager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, conn := range m.connections {
		if err := conn.HealthCheck(ctx); err != nil {
			return fmt.Errorf("connection %q unhealthy: %w", name, err)
		}
	}
	return nil
}

// Close closes every registered connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, conn := range m.connections {
		if err := conn.Close(); err != nil {
			logger.Error("Closing connection %q failed: %v", name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
		delete(m.connections, name)
	}
	m.defaultName = ""
	return firstErr
}
