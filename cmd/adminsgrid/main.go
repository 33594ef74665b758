package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/SecondBureau/adminsgrid/pkg/cache"
	"github.com/SecondBureau/adminsgrid/pkg/config"
	"github.com/SecondBureau/adminsgrid/pkg/dbmanager"
	"github.com/SecondBureau/adminsgrid/pkg/errortracking"
	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
	"github.com/SecondBureau/adminsgrid/pkg/listspec"
	"github.com/SecondBureau/adminsgrid/pkg/logger"
	"github.com/SecondBureau/adminsgrid/pkg/metrics"
	"github.com/SecondBureau/adminsgrid/pkg/middleware"
	"github.com/SecondBureau/adminsgrid/pkg/server"
	"github.com/SecondBureau/adminsgrid/pkg/testmodels"
)

func main() {
	cfgMgr := config.NewManager()
	if err := cfgMgr.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg, err := cfgMgr.GetConfig()
	if err != nil {
		log.Fatalf("Failed to get configuration: %v", err)
	}

	if cfg.Logger.Path != "" {
		logger.InitWithPath(cfg.Logger.Path, cfg.Logger.Dev)
	} else {
		logger.Init(cfg.Logger.Dev)
	}
	logger.Info("adminsgrid server starting")

	initErrorTracking(cfg)
	initCache(cfg)

	ctx := context.Background()
	conn, err := dbmanager.Open(ctx, dbmanager.FromDatabaseConfig(cfg.Database))
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	server.RegisterShutdownCallback(func(ctx context.Context) error {
		return conn.Close()
	})

	registry := fieldspec.NewRegistry()
	if err := testmodels.RegisterSampleEntities(registry); err != nil {
		logger.Error("Failed to register entities: %v", err)
		os.Exit(1)
	}

	handler := listspec.NewHandler(conn.Database(), registry, cfg.Database.CaseInsensitiveLike)
	handler.Assembler().CacheTotals = cfg.Cache.CacheTotals
	if cfg.Cache.CacheTotalTTL > 0 {
		handler.Assembler().CacheTotalTTL = cfg.Cache.CacheTotalTTL
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	listspec.SetupMuxRoutes(api, handler, nil)

	if cfg.Metrics.Enabled {
		provider := metrics.NewPrometheusProvider(cfg.Metrics.Namespace)
		metrics.SetProvider(provider)
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, provider.Handler()).Methods("GET")
		r.Use(mux.MiddlewareFunc(provider.Middleware))
	}

	r.Use(mux.MiddlewareFunc(middleware.RequestID))
	r.Use(mux.MiddlewareFunc(middleware.PanicRecovery))
	if cfg.Middleware.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.Middleware.RateLimitRPS, cfg.Middleware.RateLimitBurst)
		r.Use(mux.MiddlewareFunc(limiter.Middleware))
	}
	sizeLimiter := middleware.NewRequestSizeLimiter(cfg.Middleware.MaxRequestSize)
	r.Use(mux.MiddlewareFunc(sizeLimiter.Middleware))

	gs, err := server.NewGracefulServer(server.FromServerConfig(cfg.Server, r))
	if err != nil {
		logger.Error("Failed to create server: %v", err)
		os.Exit(1)
	}
	r.HandleFunc("/health", gs.HealthCheckHandler()).Methods("GET")
	r.HandleFunc("/ready", gs.ReadinessHandler()).Methods("GET")

	server.RegisterShutdownCallback(func(ctx context.Context) error {
		return cache.Close()
	})
	server.RegisterShutdownCallback(func(ctx context.Context) error {
		return logger.CloseErrorTracking()
	})

	logger.Info("Listening on %s", cfg.Server.Addr)
	if err := gs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}

func initErrorTracking(cfg *config.Config) {
	provider, err := errortracking.NewProvider(errortracking.Config{
		Enabled:     cfg.ErrorTracking.Enabled,
		Provider:    cfg.ErrorTracking.Provider,
		DSN:         cfg.ErrorTracking.DSN,
		Environment: cfg.ErrorTracking.Environment,
		Release:     cfg.ErrorTracking.Release,
		Debug:       cfg.ErrorTracking.Debug,
		SampleRate:  cfg.ErrorTracking.SampleRate,
	})
	if err != nil {
		logger.Warn("Error tracking disabled: %v", err)
		return
	}
	logger.InitErrorTracking(provider)
}

func initCache(cfg *config.Config) {
	switch cfg.Cache.Provider {
	case "redis":
		err := cache.UseRedis(&cache.RedisConfig{
			Host:     cfg.Cache.Redis.Host,
			Port:     cfg.Cache.Redis.Port,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			logger.Warn("Redis cache unavailable, falling back to memory: %v", err)
			_ = cache.UseMemory(&cache.Options{DefaultTTL: 5 * time.Minute, MaxEntries: 10000})
		}
	case "memcache":
		err := cache.UseMemcache(&cache.MemcacheConfig{
			Servers:      cfg.Cache.Memcache.Servers,
			MaxIdleConns: cfg.Cache.Memcache.MaxIdleConns,
			Timeout:      cfg.Cache.Memcache.Timeout,
		})
		if err != nil {
			logger.Warn("Memcache unavailable, falling back to memory: %v", err)
			_ = cache.UseMemory(&cache.Options{DefaultTTL: 5 * time.Minute, MaxEntries: 10000})
		}
	default:
		_ = cache.UseMemory(&cache.Options{DefaultTTL: 5 * time.Minute, MaxEntries: 10000})
	}
}
