package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

func sixPack() LogPurchaseInput {
	return LogPurchaseInput{
		BeerName:            "Pale Ale",
		BeerType:            "IPA",
		UnitSizeMilliliters: 330,
		Quantity:            6,
		CostPerUnit:         decimal.RequireFromString("2.495"),
		StoreName:           "  Corner Shop ",
	}
}

func TestLogPurchase(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "Alice")
	svc := h.purchases()

	lot, err := svc.LogPurchase(as(alice), sixPack())
	if err != nil {
		t.Fatalf("LogPurchase: %v", err)
	}
	if lot.RemainingQuantity != 6 || lot.TotalQuantity != 6 {
		t.Fatalf("quantity: got total=%d remaining=%d", lot.TotalQuantity, lot.RemainingQuantity)
	}
	if lot.AlcoholPercentage != 6.5 {
		t.Fatalf("abv from catalog: want=6.5 got=%v", lot.AlcoholPercentage)
	}
	if lot.StoreName == nil || *lot.StoreName != "Corner Shop" {
		t.Fatalf("store name: got=%v", lot.StoreName)
	}
	if got := lot.TotalCost().StringFixed(2); got != "14.97" {
		t.Fatalf("total cost: want=14.97 got=%s", got)
	}
	if h.emitter.count(realtime.SSEEventPurchaseLotCreated) != 1 {
		t.Fatalf("events: %v", h.emitter.events())
	}

	avail, err := svc.ListAvailable(as(alice))
	if err != nil || len(avail) != 1 {
		t.Fatalf("ListAvailable: want=1 got=%d err=%v", len(avail), err)
	}
}

func TestLogPurchaseValidation(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "Alice")
	svc := h.purchases()

	mutate := map[string]func(*LogPurchaseInput){
		"no name":       func(in *LogPurchaseInput) { in.BeerName = " " },
		"zero quantity": func(in *LogPurchaseInput) { in.Quantity = 0 },
		"free":          func(in *LogPurchaseInput) { in.CostPerUnit = decimal.Zero },
		"no size":       func(in *LogPurchaseInput) { in.UnitSizeMilliliters = 0 },
		"abv":           func(in *LogPurchaseInput) { in.AlcoholPercentage = 120 },
	}
	for name, fn := range mutate {
		in := sixPack()
		fn(&in)
		if _, err := svc.LogPurchase(as(alice), in); !apierr.HasCode(err, apierr.CodeValidation) {
			t.Fatalf("%s: want validation got=%v", name, err)
		}
	}
}

func TestDeletePurchase(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "Alice")
	bob := h.user(t, "Bob")
	svc := h.purchases()

	lot, err := svc.LogPurchase(as(alice), sixPack())
	if err != nil {
		t.Fatalf("LogPurchase: %v", err)
	}
	if err := svc.DeletePurchase(as(bob), lot.ID); !apierr.HasCode(err, apierr.CodeForbidden) {
		t.Fatalf("other user: want forbidden got=%v", err)
	}
	if err := svc.DeletePurchase(as(alice), lot.ID); err != nil {
		t.Fatalf("DeletePurchase: %v", err)
	}
	mine, err := svc.ListMine(as(alice))
	if err != nil || len(mine) != 0 {
		t.Fatalf("ListMine after delete: want=0 got=%d err=%v", len(mine), err)
	}
	if h.emitter.count(realtime.SSEEventPurchaseLotDeleted) != 1 {
		t.Fatalf("events: %v", h.emitter.events())
	}
}

func TestListHistory(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "Alice")
	bob := h.user(t, "Bob")
	svc := h.purchases()

	if _, err := svc.LogPurchase(as(alice), sixPack()); err != nil {
		t.Fatalf("LogPurchase(alice): %v", err)
	}
	lastWeek := time.Now().UTC().AddDate(0, 0, -7)
	older := sixPack()
	older.Quantity = 2
	older.CostPerUnit = decimal.RequireFromString("3")
	older.PurchaseDate = &lastWeek
	if _, err := svc.LogPurchase(as(bob), older); err != nil {
		t.Fatalf("LogPurchase(bob): %v", err)
	}

	all, err := svc.ListHistory(as(bob), 0)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(all.Purchases) != 2 || all.Purchases[0].UserID != alice.ID {
		t.Fatalf("history order: want alice first got=%+v", all.Purchases)
	}
	if got := all.TotalSpent.StringFixed(2); got != "20.97" {
		t.Fatalf("total spent: want=20.97 got=%s", got)
	}
	if all.TotalItems != 8 {
		t.Fatalf("total items: want=8 got=%d", all.TotalItems)
	}

	latest, err := svc.ListHistory(as(bob), 1)
	if err != nil || len(latest.Purchases) != 1 {
		t.Fatalf("ListHistory(1): got=%v err=%v", latest, err)
	}
	if latest.TotalItems != 6 || latest.TotalSpent.StringFixed(2) != "14.97" {
		t.Fatalf("limited totals: items=%d spent=%s", latest.TotalItems, latest.TotalSpent)
	}

	for _, limit := range []int{-1, MaxHistoryLimit + 1} {
		if _, err := svc.ListHistory(as(bob), limit); !apierr.HasCode(err, apierr.CodeValidation) {
			t.Fatalf("limit %d: want validation got=%v", limit, err)
		}
	}
}
