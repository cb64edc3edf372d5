package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pintlog-backend/internal/data/repos"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

// EntryStore is the contract the rest of the service uses to reach stored
// drink entries, profiles and purchase lots. Every call is bounded by the
// configured request timeout and reports store failures as data_unavailable.
type EntryStore interface {
	ListEntries(ctx context.Context) ([]*types.DrinkEvent, error)
	InsertEntry(ctx context.Context, entry *types.DrinkEvent) (*types.DrinkEvent, error)
	ListEntriesForUser(ctx context.Context, userID uuid.UUID) ([]*types.DrinkEvent, error)
	ListEntriesInRange(ctx context.Context, start, end time.Time) ([]*types.DrinkEvent, error)
	// SubscribeToEntryChanges registers fn for every insert, update or delete
	// notification. The returned func unsubscribes.
	SubscribeToEntryChanges(fn func(msg realtime.SSEMessage)) func()
	// Notify delivers a change notification to subscribers. It is fed by the
	// realtime bus forwarder.
	Notify(msg realtime.SSEMessage)

	ListUsers(ctx context.Context) ([]*types.User, error)

	InsertPurchase(ctx context.Context, lot *types.PurchaseLot) (*types.PurchaseLot, error)
	DecrementRemaining(ctx context.Context, lotID uuid.UUID, by int) error
	ListPurchasesWithRemainingAbove(ctx context.Context, n int) ([]*types.PurchaseLot, error)
}

type entryStore struct {
	log       *logger.Logger
	timeout   time.Duration
	eventRepo repos.DrinkEventRepo
	userRepo  repos.UserRepo
	lotRepo   repos.PurchaseLotRepo
	emitter   SSEEmitter

	mu     sync.RWMutex
	subs   map[int]func(realtime.SSEMessage)
	nextID int
}

func NewEntryStore(
	log *logger.Logger,
	timeout time.Duration,
	eventRepo repos.DrinkEventRepo,
	userRepo repos.UserRepo,
	lotRepo repos.PurchaseLotRepo,
	emitter SSEEmitter,
) EntryStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &entryStore{
		log:       log.With("service", "EntryStore"),
		timeout:   timeout,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		lotRepo:   lotRepo,
		emitter:   emitter,
		subs:      make(map[int]func(realtime.SSEMessage)),
	}
}

func (s *entryStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// unavailable keeps typed errors and marks everything else as a store failure.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	if apierr.As(err) != nil {
		return err
	}
	return apierr.DataUnavailable(err)
}

func (s *entryStore) ListEntries(ctx context.Context) ([]*types.DrinkEvent, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	out, err := s.eventRepo.List(ctx, nil)
	return out, unavailable(err)
}

func (s *entryStore) InsertEntry(ctx context.Context, entry *types.DrinkEvent) (*types.DrinkEvent, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	created, err := s.eventRepo.Create(ctx, nil, []*types.DrinkEvent{entry})
	if err != nil {
		return nil, unavailable(err)
	}
	s.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ChannelEntries,
		Event:   realtime.SSEEventDrinkEntryCreated,
		Data:    created[0],
	})
	return created[0], nil
}

func (s *entryStore) ListEntriesForUser(ctx context.Context, userID uuid.UUID) ([]*types.DrinkEvent, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	out, err := s.eventRepo.ListByUser(ctx, nil, userID)
	return out, unavailable(err)
}

func (s *entryStore) ListEntriesInRange(ctx context.Context, start, end time.Time) ([]*types.DrinkEvent, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	out, err := s.eventRepo.ListInRange(ctx, nil, start, end)
	return out, unavailable(err)
}

func (s *entryStore) SubscribeToEntryChanges(fn func(msg realtime.SSEMessage)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *entryStore) Notify(msg realtime.SSEMessage) {
	if !msg.IsEntryChange() {
		return
	}
	s.mu.RLock()
	subs := make([]func(realtime.SSEMessage), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(msg)
	}
}

func (s *entryStore) ListUsers(ctx context.Context) ([]*types.User, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	out, err := s.userRepo.List(ctx, nil)
	return out, unavailable(err)
}

func (s *entryStore) InsertPurchase(ctx context.Context, lot *types.PurchaseLot) (*types.PurchaseLot, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	created, err := s.lotRepo.Create(ctx, nil, lot)
	if err != nil {
		return nil, unavailable(err)
	}
	s.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ChannelEntries,
		Event:   realtime.SSEEventPurchaseLotCreated,
		Data:    created,
	})
	return created, nil
}

func (s *entryStore) DecrementRemaining(ctx context.Context, lotID uuid.UUID, by int) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	if err := s.lotRepo.DecrementRemaining(ctx, nil, lotID, by); err != nil {
		return unavailable(err)
	}
	s.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ChannelEntries,
		Event:   realtime.SSEEventPurchaseLotUpdated,
		Data:    map[string]any{"id": lotID, "decrement": by},
	})
	return nil
}

func (s *entryStore) ListPurchasesWithRemainingAbove(ctx context.Context, n int) ([]*types.PurchaseLot, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	out, err := s.lotRepo.ListWithRemainingAbove(ctx, nil, n)
	return out, unavailable(err)
}
