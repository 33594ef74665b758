package config

import (
	"os"
	"testing"
	"time"
)

func TestNewManager(t *testing.T) {
	mgr := NewManager()
	if mgr == nil {
		t.Fatal("Expected manager to be non-nil")
	}

	if mgr.v == nil {
		t.Fatal("Expected viper instance to be non-nil")
	}
}

func TestDefaultValues(t *testing.T) {
	mgr := NewManager()
	if err := mgr.Load(); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	cfg, err := mgr.GetConfig()
	if err != nil {
		t.Fatalf("Failed to get config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"server.addr", cfg.Server.Addr, ":8080"},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeout, 30 * time.Second},
		{"database.driver", cfg.Database.Driver, "postgres"},
		{"database.orm", cfg.Database.ORM, "bun"},
		{"database.case_insensitive_like", cfg.Database.CaseInsensitiveLike, true},
		{"cache.provider", cfg.Cache.Provider, "memory"},
		{"cache.redis.host", cfg.Cache.Redis.Host, "localhost"},
		{"cache.redis.port", cfg.Cache.Redis.Port, 6379},
		{"cache.cache_totals", cfg.Cache.CacheTotals, false},
		{"logger.dev", cfg.Logger.Dev, false},
		{"metrics.enabled", cfg.Metrics.Enabled, true},
		{"metrics.namespace", cfg.Metrics.Namespace, "adminsgrid"},
		{"middleware.rate_limit_rps", cfg.Middleware.RateLimitRPS, 100.0},
		{"middleware.rate_limit_burst", cfg.Middleware.RateLimitBurst, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestEnvironmentVariableOverrides(t *testing.T) {
	os.Setenv("ADMINSGRID_SERVER_ADDR", ":9090")
	os.Setenv("ADMINSGRID_DATABASE_DRIVER", "sqlite")
	os.Setenv("ADMINSGRID_CACHE_PROVIDER", "redis")
	os.Setenv("ADMINSGRID_LOGGER_DEV", "true")
	defer func() {
		os.Unsetenv("ADMINSGRID_SERVER_ADDR")
		os.Unsetenv("ADMINSGRID_DATABASE_DRIVER")
		os.Unsetenv("ADMINSGRID_CACHE_PROVIDER")
		os.Unsetenv("ADMINSGRID_LOGGER_DEV")
	}()

	mgr := NewManager()
	if err := mgr.Load(); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	cfg, err := mgr.GetConfig()
	if err != nil {
		t.Fatalf("Failed to get config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"server.addr", cfg.Server.Addr, ":9090"},
		{"database.driver", cfg.Database.Driver, "sqlite"},
		{"cache.provider", cfg.Cache.Provider, "redis"},
		{"logger.dev", cfg.Logger.Dev, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestProgrammaticConfiguration(t *testing.T) {
	mgr := NewManager()
	mgr.Set("server.addr", ":7070")
	mgr.Set("database.dsn", "postgres://localhost/admin_test")

	cfg, err := mgr.GetConfig()
	if err != nil {
		t.Fatalf("Failed to get config: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("server.addr: got %s, want :7070", cfg.Server.Addr)
	}

	if cfg.Database.DSN != "postgres://localhost/admin_test" {
		t.Errorf("database.dsn: got %s, want postgres://localhost/admin_test", cfg.Database.DSN)
	}
}

func TestWithOptions(t *testing.T) {
	mgr := NewManagerWithOptions(
		WithEnvPrefix("MYADMIN"),
	)

	if mgr == nil {
		t.Fatal("Expected manager to be non-nil")
	}

	os.Setenv("MYADMIN_SERVER_ADDR", ":5000")
	defer os.Unsetenv("MYADMIN_SERVER_ADDR")

	if err := mgr.Load(); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	cfg, err := mgr.GetConfig()
	if err != nil {
		t.Fatalf("Failed to get config: %v", err)
	}

	if cfg.Server.Addr != ":5000" {
		t.Errorf("server.addr: got %s, want :5000", cfg.Server.Addr)
	}
}
