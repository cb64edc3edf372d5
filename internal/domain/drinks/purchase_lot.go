package drinks

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseLot is a batch buy whose remaining units are consumed one drink at a time.
type PurchaseLot struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	UserName            string          `gorm:"not null;column:user_name" json:"user_name"`
	BeerName            string          `gorm:"not null;column:beer_name" json:"beer_name"`
	BeerType            string          `gorm:"column:beer_type" json:"beer_type,omitempty"`
	AlcoholPercentage   float64         `gorm:"column:alcohol_percentage" json:"alcohol_percentage"`
	UnitSizeMilliliters float64         `gorm:"not null;column:unit_size_ml" json:"unit_size_ml"`
	TotalQuantity       int             `gorm:"not null;column:total_quantity" json:"total_quantity"`
	RemainingQuantity   int             `gorm:"not null;column:remaining_quantity;check:chk_purchase_lot_remaining,remaining_quantity >= 0" json:"remaining_quantity"`
	QuantityUnit        string          `gorm:"not null;column:quantity_unit;default:bottles" json:"quantity_unit"`
	CostPerUnit         decimal.Decimal `gorm:"type:decimal(20,4);not null;column:cost_per_unit" json:"cost_per_unit"`
	PurchaseDate        time.Time       `gorm:"not null;column:purchase_date" json:"purchase_date"`
	StoreName           *string         `gorm:"column:store_name" json:"store_name,omitempty"`
	Notes               *string         `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt           time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null" json:"updated_at"`
}

func (PurchaseLot) TableName() string { return "purchase_lot" }

func (p *PurchaseLot) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.QuantityUnit == "" {
		p.QuantityUnit = "bottles"
	}
	return nil
}

// TotalCost is CostPerUnit times TotalQuantity.
func (p *PurchaseLot) TotalCost() decimal.Decimal {
	return p.CostPerUnit.Mul(decimal.NewFromInt(int64(p.TotalQuantity)))
}
