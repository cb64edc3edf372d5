package user

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/pintlog-backend/internal/bac"
)

func TestPhysiologySettingsResolve(t *testing.T) {
	u := &User{Physiology: datatypes.JSON(`{"profile":"female","body_weight_kg":62}`)}
	s, err := u.PhysiologySettings()
	if err != nil {
		t.Fatalf("PhysiologySettings: %v", err)
	}
	if s.Profile != "female" {
		t.Fatalf("profile: want=female got=%q", s.Profile)
	}
	p := s.Resolve(bac.DefaultPhysiology())
	if p.BodyWeightKg != 62 || p.DistributionFactor != 0.68 {
		t.Fatalf("Resolve: got=%+v", p)
	}
	empty, err := (&User{}).PhysiologySettings()
	if err != nil || empty != (PhysiologySettings{}) {
		t.Fatalf("empty settings: got=%+v err=%v", empty, err)
	}
}
