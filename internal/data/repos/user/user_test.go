package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/pintlog-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	id := uuid.New()
	created, err := repo.Upsert(ctx, nil, &types.User{ID: id, Name: "Ann", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if created.ID != id {
		t.Fatalf("Upsert: want id=%s got=%s", id, created.ID)
	}

	if _, err := repo.Upsert(ctx, nil, &types.User{ID: id, Name: "Annie", Email: "annie@example.com"}); err != nil {
		t.Fatalf("Upsert existing: %v", err)
	}
	got, err := repo.GetByID(ctx, nil, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Annie" || got.Email != "annie@example.com" {
		t.Fatalf("Upsert did not refresh profile: %+v", got)
	}

	testutil.SeedUser(t, ctx, db, "Bo")
	all, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Annie" {
		t.Fatalf("List: unexpected result: %+v", all)
	}

	byIDs, err := repo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil || len(byIDs) != 1 {
		t.Fatalf("GetByIDs: got=%v err=%v", byIDs, err)
	}
	empty, err := repo.GetByIDs(ctx, nil, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("GetByIDs empty: got=%v err=%v", empty, err)
	}

	if err := repo.UpdateProfile(ctx, nil, id, "", datatypes.JSON(`{"profile":"female"}`)); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got, _ = repo.GetByID(ctx, nil, id)
	settings, err := got.PhysiologySettings()
	if err != nil || settings.Profile != "female" || got.Name != "Annie" {
		t.Fatalf("UpdateProfile: got=%+v settings=%+v err=%v", got, settings, err)
	}

	if err := repo.UpdateProfile(ctx, nil, uuid.New(), "x", nil); !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("UpdateProfile missing: want not_found got=%v", err)
	}
	if _, err := repo.GetByID(ctx, nil, uuid.New()); !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("GetByID missing: want not_found got=%v", err)
	}
}
