package drinks

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BeerType struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string         `gorm:"uniqueIndex;not null;column:name" json:"name"`
	DefaultABV float64        `gorm:"column:default_abv" json:"default_abv"`
	Aliases    datatypes.JSON `gorm:"column:aliases" json:"aliases,omitempty"`
}

func (BeerType) TableName() string { return "beer_type" }

func (b *BeerType) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
