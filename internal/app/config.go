package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/pintlog-backend/internal/data/db"
	"github.com/yungbote/pintlog-backend/internal/platform/envutil"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime/bus"
	"github.com/yungbote/pintlog-backend/internal/services"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string

	Port           string
	MetricsAddr    string
	AllowedOrigins []string

	DB  db.Config
	Bus bus.Config

	Auth services.AuthConfig

	StoreRequestTimeout time.Duration
	BACIntervalMinutes  int
	DeleteMode          services.DeleteMode
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		ServiceName:    envutil.String("SERVICE_NAME", "pintlog-backend"),
		Environment:    envutil.String("APP_ENV", "development"),
		Version:        envutil.String("APP_VERSION", "dev"),
		Port:           envutil.String("PORT", "8080"),
		MetricsAddr:    envutil.String("METRICS_ADDR", ":9090"),
		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
		DB:             db.ConfigFromEnv(),
		Bus:            bus.ConfigFromEnv(),
		Auth: services.AuthConfig{
			Secret:   envutil.String("AUTH_JWT_SECRET", ""),
			Issuer:   envutil.String("AUTH_JWT_ISSUER", ""),
			Audience: envutil.String("AUTH_JWT_AUDIENCE", ""),
			Leeway:   envutil.Duration("AUTH_JWT_LEEWAY", 30*time.Second),
		},
		StoreRequestTimeout: envutil.Duration("STORE_REQUEST_TIMEOUT", 5*time.Second),
		BACIntervalMinutes:  envutil.Int("BAC_SAMPLE_INTERVAL_MINUTES", 0),
		DeleteMode:          services.DeleteMode(strings.ToLower(envutil.String("DELETE_MODE", string(services.DeleteTransactional)))),
	}

	switch cfg.DeleteMode {
	case services.DeleteTransactional, services.DeleteCompensating:
	default:
		return Config{}, fmt.Errorf("unknown DELETE_MODE %q", cfg.DeleteMode)
	}
	if cfg.BACIntervalMinutes < 0 {
		return Config{}, fmt.Errorf("BAC_SAMPLE_INTERVAL_MINUTES must be >= 0, got %d", cfg.BACIntervalMinutes)
	}
	if cfg.Auth.Secret == "" {
		log.Warn("AUTH_JWT_SECRET is empty; every protected request will be rejected")
	}
	log.Info("config loaded",
		"port", cfg.Port,
		"db_driver", cfg.DB.Driver,
		"realtime_bus", cfg.Bus.Kind,
		"delete_mode", cfg.DeleteMode,
	)
	return cfg, nil
}
