package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/bac"
	"github.com/yungbote/pintlog-backend/internal/data/repos"
	"github.com/yungbote/pintlog-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Event)
	}
	return out
}

func (e *recordingEmitter) count(ev realtime.SSEEvent) int {
	n := 0
	for _, got := range e.events() {
		if got == ev {
			n++
		}
	}
	return n
}

type harness struct {
	db        *gorm.DB
	log       *logger.Logger
	presets   *bac.Presets
	emitter   *recordingEmitter
	users     repos.UserRepo
	events    repos.DrinkEventRepo
	lots      repos.PurchaseLotRepo
	beerTypes repos.BeerTypeRepo
	catalog   CatalogService
	store     EntryStore
}

// newHarness wires services over a private SQLite database. The stats and
// cache tests read concurrently, which a shared Postgres test transaction
// cannot serve.
func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	h := &harness{
		db:      db,
		log:     log,
		presets: bac.DefaultPresets(),
		emitter: &recordingEmitter{},
	}
	h.users = repos.NewUserRepo(db, log)
	h.events = repos.NewDrinkEventRepo(db, log)
	h.lots = repos.NewPurchaseLotRepo(db, log)
	h.beerTypes = repos.NewBeerTypeRepo(db, log)
	h.catalog = NewCatalogService(db, log, h.beerTypes, h.presets)
	h.store = NewEntryStore(log, 5*time.Second, h.events, h.users, h.lots, h.emitter)
	return h
}

func (h *harness) drinks(mode DeleteMode) DrinkService {
	return NewDrinkService(h.db, h.log, h.events, h.lots, h.users, h.catalog, h.emitter, mode)
}

func (h *harness) purchases() PurchaseService {
	return NewPurchaseService(h.db, h.log, h.store, h.lots, h.catalog, h.emitter)
}

func (h *harness) user(t *testing.T, name string) *types.User {
	t.Helper()
	return testutil.SeedUser(t, context.Background(), h.db, name)
}

func (h *harness) lot(t *testing.T, owner *types.User, qty int) *types.PurchaseLot {
	t.Helper()
	return testutil.SeedPurchaseLot(t, context.Background(), h.db, owner, qty)
}

func (h *harness) remaining(t *testing.T, lot *types.PurchaseLot) int {
	t.Helper()
	got, err := h.lots.GetByID(context.Background(), nil, lot.ID)
	if err != nil {
		t.Fatalf("GetByID(lot): %v", err)
	}
	return got.RemainingQuantity
}

func as(u *types.User) context.Context {
	return ctxutil.WithSession(context.Background(), &ctxutil.Session{UserID: u.ID, UserName: u.Name, Email: u.Email})
}

func asAdmin(u *types.User) context.Context {
	return ctxutil.WithSession(context.Background(), &ctxutil.Session{UserID: u.ID, UserName: u.Name, Role: ctxutil.RoleAdmin})
}

func ptr[T any](v T) *T { return &v }
