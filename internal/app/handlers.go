package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/pintlog-backend/internal/http/handlers"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Catalog  *httpH.CatalogHandler
	User     *httpH.UserHandler
	Drink    *httpH.DrinkHandler
	Purchase *httpH.PurchaseHandler
	Stats    *httpH.StatsHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Catalog:  httpH.NewCatalogHandler(services.Catalog),
		User:     httpH.NewUserHandler(services.User),
		Drink:    httpH.NewDrinkHandler(services.Drink),
		Purchase: httpH.NewPurchaseHandler(services.Purchase),
		Stats:    httpH.NewStatsHandler(services.Stats),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
	}
}
