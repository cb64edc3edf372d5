package drinks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/bac"
)

// DrinkEvent is an immutable record of one consumed drink.
type DrinkEvent struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index:idx_drink_event_user_time,priority:1" json:"user_id"`
	UserName          string     `gorm:"not null;column:user_name" json:"user_name"`
	VolumeMilliliters float64    `gorm:"not null;column:volume_ml" json:"volume_ml"`
	AlcoholPercentage float64    `gorm:"not null;column:alcohol_percentage" json:"alcohol_percentage"`
	OccurredAt        time.Time  `gorm:"not null;column:occurred_at;index;index:idx_drink_event_user_time,priority:2" json:"occurred_at"`
	Type              *string    `gorm:"column:type" json:"type,omitempty"`
	PurchaseID        *uuid.UUID `gorm:"type:uuid;column:purchase_id;index" json:"purchase_id,omitempty"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
}

func (DrinkEvent) TableName() string { return "drink_event" }

func (e *DrinkEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.OccurredAt = e.OccurredAt.UTC()
	return nil
}

func (e *DrinkEvent) ToBAC() bac.DrinkEvent {
	out := bac.DrinkEvent{
		ID:                e.ID.String(),
		UserID:            e.UserID.String(),
		UserName:          e.UserName,
		VolumeMilliliters: e.VolumeMilliliters,
		AlcoholPercentage: e.AlcoholPercentage,
		OccurredAt:        e.OccurredAt,
	}
	if e.Type != nil {
		out.Type = *e.Type
	}
	if e.PurchaseID != nil {
		out.PurchaseID = e.PurchaseID.String()
	}
	return out
}

func ToBACEvents(events []*DrinkEvent) []bac.DrinkEvent {
	out := make([]bac.DrinkEvent, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		out = append(out, e.ToBAC())
	}
	return out
}
