package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/bac"
	"github.com/yungbote/pintlog-backend/internal/data/db"
	"github.com/yungbote/pintlog-backend/internal/http"
	"github.com/yungbote/pintlog-backend/internal/observability"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
	"github.com/yungbote/pintlog-backend/internal/realtime/bus"
	"github.com/yungbote/pintlog-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Bus      bus.Bus
	Metrics  *observability.Metrics
	Server   *http.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	presets, err := bac.LoadPresets()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load presets: %w", err)
	}

	pg, err := db.NewPostgresService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := pg.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	ssehub := realtime.NewSSEHub(log)
	rtBus, err := bus.New(cfg.Bus, log)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("init realtime bus: %w", err)
	}
	emitter := &services.BusEmitter{Bus: rtBus, Log: log}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, presets, reposet, emitter)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := serviceset.Catalog.SeedDefaults(seedCtx); err != nil {
		log.Warn("seeding beer types failed; catalog falls back to presets", "error", err)
	}

	metrics := observability.Init(log)
	handlerset := wireHandlers(theDB, log, serviceset, ssehub)
	middleware := wireMiddleware(log, serviceset)
	server := http.NewServer(wireRouterConfig(log, cfg, metrics, handlerset, middleware))

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		SSEHub:   ssehub,
		Bus:      rtBus,
		Metrics:  metrics,
		Server:   server,
		pg:       pg,
	}, nil
}

// Start launches the background loops: the bus forwarder feeding the local
// hub and the entry cache, the cache itself, and the collectors.
func (a *App) Start(ctx context.Context) error {
	if a == nil {
		return errors.New("app not initialized")
	}
	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: a.Cfg.ServiceName,
		Environment: a.Cfg.Environment,
		Version:     a.Cfg.Version,
	})

	store := a.Services.Store
	if err := a.Bus.StartForwarder(ctx, func(m realtime.SSEMessage) {
		a.SSEHub.Broadcast(m)
		store.Notify(m)
	}); err != nil {
		return fmt.Errorf("start bus forwarder: %w", err)
	}
	if err := a.Services.Cache.Start(ctx); err != nil {
		return fmt.Errorf("start entry cache: %w", err)
	}

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.Cfg.Bus.Kind == bus.KindRedis {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.Bus.RedisAddr)
		}
	}
	return nil
}

// Run starts the app and serves HTTP until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("realtime bus close failed", "error", err)
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
