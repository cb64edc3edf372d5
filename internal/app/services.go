package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/bac"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/services"
)

type Services struct {
	Emitter services.SSEEmitter

	Store   services.EntryStore
	Cache   services.EntryCache
	Catalog services.CatalogService

	Auth     services.AuthService
	User     services.UserService
	Drink    services.DrinkService
	Purchase services.PurchaseService
	Stats    services.StatsService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, presets *bac.Presets, r Repos, emitter services.SSEEmitter) Services {
	log.Info("Wiring services...")

	store := services.NewEntryStore(log, cfg.StoreRequestTimeout, r.DrinkEvent, r.User, r.PurchaseLot, emitter)
	cache := services.NewEntryCache(log, store)
	catalog := services.NewCatalogService(db, log, r.BeerType, presets)

	return Services{
		Emitter:  emitter,
		Store:    store,
		Cache:    cache,
		Catalog:  catalog,
		Auth:     services.NewAuthService(log, r.User, cfg.Auth, emitter),
		User:     services.NewUserService(db, log, r.User, presets, emitter),
		Drink:    services.NewDrinkService(db, log, r.DrinkEvent, r.PurchaseLot, r.User, catalog, emitter, cfg.DeleteMode),
		Purchase: services.NewPurchaseService(db, log, store, r.PurchaseLot, catalog, emitter),
		Stats:    services.NewStatsService(log, store, cache, presets, cfg.BACIntervalMinutes),
	}
}
