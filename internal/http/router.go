package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pintlog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pintlog-backend/internal/http/middleware"
	"github.com/yungbote/pintlog-backend/internal/observability"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	CatalogHandler  *httpH.CatalogHandler
	UserHandler     *httpH.UserHandler
	DrinkHandler    *httpH.DrinkHandler
	PurchaseHandler *httpH.PurchaseHandler
	StatsHandler    *httpH.StatsHandler
	RealtimeHandler *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Catalog (public)
		if cfg.CatalogHandler != nil {
			api.GET("/beer-types", cfg.CatalogHandler.ListBeerTypes)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
			protected.POST("/sse/subscribe", cfg.RealtimeHandler.SSESubscribe)
			protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
		}

		// Users
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
			protected.GET("/users", cfg.UserHandler.ListUsers)
		}

		// Drinks
		if cfg.DrinkHandler != nil {
			protected.POST("/drinks", cfg.DrinkHandler.LogDrink)
			protected.GET("/drinks", cfg.DrinkHandler.ListDrinks)
			protected.DELETE("/drinks/:id", cfg.DrinkHandler.DeleteDrink)
		}

		// Purchases
		if cfg.PurchaseHandler != nil {
			protected.POST("/purchases", cfg.PurchaseHandler.LogPurchase)
			protected.GET("/purchases", cfg.PurchaseHandler.ListPurchases)
			protected.DELETE("/purchases/:id", cfg.PurchaseHandler.DeletePurchase)
		}

		// Stats
		if cfg.StatsHandler != nil {
			protected.GET("/stats/bac", cfg.StatsHandler.BACSeries)
			protected.GET("/stats/bac/compare", cfg.StatsHandler.BACComparison)
			protected.GET("/stats/daily", cfg.StatsHandler.DailyConsumption)
			protected.GET("/stats/cumulative", cfg.StatsHandler.CumulativeConsumption)
			protected.GET("/stats/leaderboard", cfg.StatsHandler.Leaderboard)
		}
	}

	return r
}
