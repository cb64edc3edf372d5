package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/pintlog-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.User {
	tb.Helper()
	now := time.Now().UTC()
	u := &types.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     uuid.NewString() + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPurchaseLot(tb testing.TB, ctx context.Context, tx *gorm.DB, owner *types.User, quantity int) *types.PurchaseLot {
	tb.Helper()
	now := time.Now().UTC()
	lot := &types.PurchaseLot{
		ID:                  uuid.New(),
		UserID:              owner.ID,
		UserName:            owner.Name,
		BeerName:            "House Lager",
		BeerType:            "Lager",
		AlcoholPercentage:   5.2,
		UnitSizeMilliliters: 500,
		TotalQuantity:       quantity,
		RemainingQuantity:   quantity,
		CostPerUnit:         decimal.RequireFromString("1.25"),
		PurchaseDate:        now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := tx.WithContext(ctx).Create(lot).Error; err != nil {
		tb.Fatalf("seed purchase lot: %v", err)
	}
	return lot
}

func SeedDrink(tb testing.TB, ctx context.Context, tx *gorm.DB, owner *types.User, ml float64, at time.Time) *types.DrinkEvent {
	tb.Helper()
	e := &types.DrinkEvent{
		ID:                uuid.New(),
		UserID:            owner.ID,
		UserName:          owner.Name,
		VolumeMilliliters: ml,
		AlcoholPercentage: 5,
		OccurredAt:        at.UTC(),
		CreatedAt:         time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed drink: %v", err)
	}
	return e
}
