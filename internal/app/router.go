package app

import (
	"github.com/yungbote/pintlog-backend/internal/http"
	"github.com/yungbote/pintlog-backend/internal/observability"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

func wireRouterConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) http.RouterConfig {
	return http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		CatalogHandler:  handlers.Catalog,
		UserHandler:     handlers.User,
		DrinkHandler:    handlers.Drink,
		PurchaseHandler: handlers.Purchase,
		StatsHandler:    handlers.Stats,
		RealtimeHandler: handlers.Realtime,
	}
}
