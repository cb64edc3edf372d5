package repos

import (
	"github.com/yungbote/pintlog-backend/internal/data/repos/drinks"
	"github.com/yungbote/pintlog-backend/internal/data/repos/user"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo

type DrinkEventRepo = drinks.DrinkEventRepo
type PurchaseLotRepo = drinks.PurchaseLotRepo
type BeerTypeRepo = drinks.BeerTypeRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewDrinkEventRepo(db *gorm.DB, baseLog *logger.Logger) DrinkEventRepo {
	return drinks.NewDrinkEventRepo(db, baseLog)
}
func NewPurchaseLotRepo(db *gorm.DB, baseLog *logger.Logger) PurchaseLotRepo {
	return drinks.NewPurchaseLotRepo(db, baseLog)
}
func NewBeerTypeRepo(db *gorm.DB, baseLog *logger.Logger) BeerTypeRepo {
	return drinks.NewBeerTypeRepo(db, baseLog)
}
