package user

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/bac"
)

// User is the profile row mirrored from the hosted auth provider.
type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"not null;column:name" json:"name"`
	Email string    `gorm:"uniqueIndex;not null;column:email" json:"email"`

	// Physiology holds optional per-user overrides ({"profile":"female","body_weight_kg":62}).
	Physiology datatypes.JSON `gorm:"column:physiology" json:"physiology,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "app_user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PhysiologySettings is the decoded form of User.Physiology.
type PhysiologySettings struct {
	Profile                        string  `json:"profile,omitempty"`
	BodyWeightKg                   float64 `json:"body_weight_kg,omitempty"`
	DistributionFactor             float64 `json:"distribution_factor,omitempty"`
	EliminationRatePermillePerHour float64 `json:"elimination_rate_permille_per_hour,omitempty"`
}

func (u *User) PhysiologySettings() (PhysiologySettings, error) {
	var s PhysiologySettings
	if len(u.Physiology) == 0 || string(u.Physiology) == "null" {
		return s, nil
	}
	err := json.Unmarshal(u.Physiology, &s)
	return s, err
}

// Resolve overlays the explicit overrides onto the named base profile.
func (s PhysiologySettings) Resolve(base bac.Physiology) bac.Physiology {
	p := base
	if s.BodyWeightKg > 0 {
		p.BodyWeightKg = s.BodyWeightKg
	}
	if s.DistributionFactor > 0 {
		p.DistributionFactor = s.DistributionFactor
	}
	if s.EliminationRatePermillePerHour > 0 {
		p.EliminationRatePermillePerHour = s.EliminationRatePermillePerHour
	}
	return p
}

func (u *User) ToBAC() bac.User {
	return bac.User{ID: u.ID.String(), Name: u.Name}
}
