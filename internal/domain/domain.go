package domain

import (
	"github.com/yungbote/pintlog-backend/internal/domain/drinks"
	"github.com/yungbote/pintlog-backend/internal/domain/user"
)

type User = user.User
type PhysiologySettings = user.PhysiologySettings

type DrinkEvent = drinks.DrinkEvent
type PurchaseLot = drinks.PurchaseLot
type BeerType = drinks.BeerType

var ToBACEvents = drinks.ToBACEvents

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&BeerType{},
		&PurchaseLot{},
		&DrinkEvent{},
	}
}
