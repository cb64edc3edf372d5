package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/data/repos"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

type Repos struct {
	User        repos.UserRepo
	DrinkEvent  repos.DrinkEventRepo
	PurchaseLot repos.PurchaseLotRepo
	BeerType    repos.BeerTypeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		DrinkEvent:  repos.NewDrinkEventRepo(db, log),
		PurchaseLot: repos.NewPurchaseLotRepo(db, log),
		BeerType:    repos.NewBeerTypeRepo(db, log),
	}
}
