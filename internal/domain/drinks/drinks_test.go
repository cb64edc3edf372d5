package drinks

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestDrinkEventToBAC(t *testing.T) {
	pid := uuid.New()
	style := "IPA"
	at := time.Date(2026, 5, 1, 20, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	e := &DrinkEvent{ID: uuid.New(), UserID: uuid.New(), UserName: "Ann", VolumeMilliliters: 330, AlcoholPercentage: 6.5, OccurredAt: at, Type: &style, PurchaseID: &pid}
	got := e.ToBAC()
	if got.PurchaseID != pid.String() || got.Type != "IPA" || got.VolumeMilliliters != 330 || !got.OccurredAt.Equal(at) {
		t.Fatalf("ToBAC: got=%+v", got)
	}
	if n := len(ToBACEvents([]*DrinkEvent{e, nil})); n != 1 {
		t.Fatalf("ToBACEvents: want=1 got=%d", n)
	}
}

func TestPurchaseLotTotalCost(t *testing.T) {
	p := &PurchaseLot{CostPerUnit: decimal.RequireFromString("1.35"), TotalQuantity: 24}
	if got := p.TotalCost().StringFixed(2); got != "32.40" {
		t.Fatalf("TotalCost: want=32.40 got=%s", got)
	}
}
