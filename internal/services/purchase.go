package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/data/repos"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

type LogPurchaseInput struct {
	BeerName            string          `json:"beer_name"`
	BeerType            string          `json:"beer_type,omitempty"`
	AlcoholPercentage   float64         `json:"alcohol_percentage,omitempty"`
	UnitSizeMilliliters float64         `json:"unit_size_ml"`
	Quantity            int             `json:"quantity"`
	QuantityUnit        string          `json:"quantity_unit,omitempty"`
	CostPerUnit         decimal.Decimal `json:"cost_per_unit"`
	PurchaseDate        *time.Time      `json:"purchase_date,omitempty"`
	StoreName           string          `json:"store_name,omitempty"`
	Notes               string          `json:"notes,omitempty"`
}

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 200
)

// PurchaseHistory is the group's latest lots with totals over those lots.
type PurchaseHistory struct {
	Purchases  []*types.PurchaseLot `json:"purchases"`
	TotalSpent decimal.Decimal      `json:"total_spent"`
	TotalItems int                  `json:"total_items"`
}

type PurchaseService interface {
	LogPurchase(ctx context.Context, in LogPurchaseInput) (*types.PurchaseLot, error)
	ListAvailable(ctx context.Context) ([]*types.PurchaseLot, error)
	ListMine(ctx context.Context) ([]*types.PurchaseLot, error)
	// ListHistory returns the newest lots of every user. Zero limit means
	// DefaultHistoryLimit.
	ListHistory(ctx context.Context, limit int) (*PurchaseHistory, error)
	DeletePurchase(ctx context.Context, id uuid.UUID) error
}

type purchaseService struct {
	db      *gorm.DB
	log     *logger.Logger
	store   EntryStore
	lotRepo repos.PurchaseLotRepo
	catalog CatalogService
	emitter SSEEmitter
}

func NewPurchaseService(db *gorm.DB, log *logger.Logger, store EntryStore, lotRepo repos.PurchaseLotRepo, catalog CatalogService, emitter SSEEmitter) PurchaseService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &purchaseService{
		db:      db,
		log:     log.With("service", "PurchaseService"),
		store:   store,
		lotRepo: lotRepo,
		catalog: catalog,
		emitter: emitter,
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (ps *purchaseService) LogPurchase(ctx context.Context, in LogPurchaseInput) (*types.PurchaseLot, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.BeerName)
	switch {
	case name == "":
		return nil, apierr.Validation(fmt.Errorf("beer_name is required"))
	case in.Quantity <= 0:
		return nil, apierr.Validation(fmt.Errorf("quantity must be positive"))
	case !in.CostPerUnit.IsPositive():
		return nil, apierr.Validation(fmt.Errorf("cost_per_unit must be positive"))
	case !finite(in.UnitSizeMilliliters) || in.UnitSizeMilliliters <= 0:
		return nil, apierr.Validation(fmt.Errorf("unit_size_ml must be positive"))
	case !finite(in.AlcoholPercentage) || in.AlcoholPercentage < 0 || in.AlcoholPercentage > 100:
		return nil, apierr.Validation(fmt.Errorf("alcohol_percentage must be within [0,100]"))
	}

	abv := in.AlcoholPercentage
	if abv == 0 {
		abv = ps.catalog.DefaultABV(ctx, in.BeerType)
	}
	purchased := time.Now().UTC()
	if in.PurchaseDate != nil && !in.PurchaseDate.IsZero() {
		purchased = in.PurchaseDate.UTC()
	}
	lot := &types.PurchaseLot{
		ID:                  uuid.New(),
		UserID:              s.UserID,
		UserName:            s.UserName,
		BeerName:            name,
		BeerType:            strings.TrimSpace(in.BeerType),
		AlcoholPercentage:   abv,
		UnitSizeMilliliters: in.UnitSizeMilliliters,
		TotalQuantity:       in.Quantity,
		RemainingQuantity:   in.Quantity,
		QuantityUnit:        strings.TrimSpace(in.QuantityUnit),
		CostPerUnit:         in.CostPerUnit.Round(4),
		PurchaseDate:        purchased,
		StoreName:           optional(in.StoreName),
		Notes:               optional(in.Notes),
	}
	created, err := ps.store.InsertPurchase(ctx, lot)
	if err != nil {
		return nil, err
	}
	ps.log.Info("purchase logged", "user_id", s.UserID, "purchase_id", created.ID, "quantity", created.TotalQuantity, "total_cost", created.TotalCost().StringFixed(2))
	return created, nil
}

func (ps *purchaseService) ListAvailable(ctx context.Context) ([]*types.PurchaseLot, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	return ps.store.ListPurchasesWithRemainingAbove(ctx, 0)
}

func (ps *purchaseService) ListMine(ctx context.Context) ([]*types.PurchaseLot, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	out, err := ps.lotRepo.ListByUser(ctx, nil, s.UserID)
	return out, unavailable(err)
}

func (ps *purchaseService) ListHistory(ctx context.Context, limit int) (*PurchaseHistory, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	switch {
	case limit == 0:
		limit = DefaultHistoryLimit
	case limit < 0 || limit > MaxHistoryLimit:
		return nil, apierr.Validation(fmt.Errorf("limit must be within [1,%d]", MaxHistoryLimit))
	}
	lots, err := ps.lotRepo.ListRecent(ctx, nil, limit)
	if err != nil {
		return nil, unavailable(err)
	}
	out := &PurchaseHistory{Purchases: lots, TotalSpent: decimal.Zero}
	for _, lot := range lots {
		out.TotalSpent = out.TotalSpent.Add(lot.TotalCost())
		out.TotalItems += lot.TotalQuantity
	}
	return out, nil
}

// DeletePurchase removes a lot. Drinks that consumed from it keep their
// purchase_id as a dangling weak reference.
func (ps *purchaseService) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	s, err := requireSession(ctx)
	if err != nil {
		return err
	}
	lot, err := ps.lotRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if lot.UserID != s.UserID && !s.IsAdmin() {
		return apierr.Forbidden(fmt.Errorf("purchase %s belongs to another user", id))
	}
	if err := ps.lotRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	ps.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ChannelEntries,
		Event:   realtime.SSEEventPurchaseLotDeleted,
		Data:    map[string]any{"id": id},
	})
	return nil
}
