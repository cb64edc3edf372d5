package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/bac"
	"github.com/yungbote/pintlog-backend/internal/data/repos"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/observability"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

// DeleteMode selects how a drink delete restores its purchase lot.
type DeleteMode string

const (
	// DeleteTransactional deletes and restores in one transaction.
	DeleteTransactional DeleteMode = "transactional"
	// DeleteCompensating commits the delete first, then restores. A failed
	// restore is reported and the delete stays.
	DeleteCompensating DeleteMode = "compensating"
)

// ErrRestoreFailed marks a compensating delete whose lot restore failed.
var ErrRestoreFailed = errors.New("drink deleted but purchase lot was not restored")

// maxFutureSkew bounds how far ahead of the server clock a drink may be logged.
const maxFutureSkew = 5 * time.Minute

type LogDrinkInput struct {
	VolumeMilliliters *float64   `json:"volume_ml,omitempty"`
	VolumeLiters      *float64   `json:"volume_liters,omitempty"`
	AlcoholPercentage *float64   `json:"alcohol_percentage,omitempty"`
	Type              string     `json:"type,omitempty"`
	PurchaseID        *uuid.UUID `json:"purchase_id,omitempty"`
	OccurredAt        *time.Time `json:"occurred_at,omitempty"`
}

type DrinkFilter struct {
	UserID *uuid.UUID
	Start  *time.Time
	End    *time.Time
}

type DrinkService interface {
	LogDrink(ctx context.Context, in LogDrinkInput) (*types.DrinkEvent, error)
	DeleteDrink(ctx context.Context, id uuid.UUID) error
	ListDrinks(ctx context.Context, filter DrinkFilter) ([]*types.DrinkEvent, error)
}

type drinkService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.DrinkEventRepo
	lotRepo   repos.PurchaseLotRepo
	userRepo  repos.UserRepo
	catalog   CatalogService
	emitter   SSEEmitter
	mode      DeleteMode
	now       func() time.Time
}

func NewDrinkService(
	db *gorm.DB,
	log *logger.Logger,
	eventRepo repos.DrinkEventRepo,
	lotRepo repos.PurchaseLotRepo,
	userRepo repos.UserRepo,
	catalog CatalogService,
	emitter SSEEmitter,
	mode DeleteMode,
) DrinkService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if mode == "" {
		mode = DeleteTransactional
	}
	return &drinkService{
		db:        db,
		log:       log.With("service", "DrinkService"),
		eventRepo: eventRepo,
		lotRepo:   lotRepo,
		userRepo:  userRepo,
		catalog:   catalog,
		emitter:   emitter,
		mode:      mode,
		now:       time.Now,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (ds *drinkService) LogDrink(ctx context.Context, in LogDrinkInput) (*types.DrinkEvent, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	now := ds.now().UTC()
	occurredAt := now
	if in.OccurredAt != nil && !in.OccurredAt.IsZero() {
		occurredAt = in.OccurredAt.UTC()
		if occurredAt.After(now.Add(maxFutureSkew)) {
			return nil, apierr.Validation(fmt.Errorf("occurred_at is in the future"))
		}
	}

	volume := 0.0
	switch {
	case in.VolumeMilliliters != nil:
		volume = *in.VolumeMilliliters
	case in.VolumeLiters != nil:
		volume = *in.VolumeLiters * 1000
	}
	abv := 0.0
	if in.AlcoholPercentage != nil {
		abv = *in.AlcoholPercentage
		if !finite(abv) || abv < 0 || abv > 100 {
			return nil, apierr.Validation(fmt.Errorf("alcohol_percentage must be within [0,100]"))
		}
	}
	beerType := strings.TrimSpace(in.Type)

	userName := s.UserName
	if u, err := ds.userRepo.GetByID(ctx, nil, s.UserID); err == nil && u.Name != "" {
		userName = u.Name
	}

	event := &types.DrinkEvent{
		ID:         uuid.New(),
		UserID:     s.UserID,
		UserName:   userName,
		OccurredAt: occurredAt,
		PurchaseID: in.PurchaseID,
	}

	// Lot attributes are immutable, so they are read before the write
	// transaction; only the counter is touched inside it.
	var lot *types.PurchaseLot
	if in.PurchaseID != nil {
		lot, err = ds.lotRepo.GetByID(ctx, nil, *in.PurchaseID)
		if err != nil {
			return nil, err
		}
		if volume == 0 {
			volume = lot.UnitSizeMilliliters
		}
		if abv == 0 {
			abv = lot.AlcoholPercentage
		}
		if beerType == "" {
			beerType = lot.BeerType
		}
	}
	if !finite(volume) || volume <= 0 {
		return nil, apierr.Validation(fmt.Errorf("volume must be positive"))
	}
	if abv == 0 {
		abv = ds.catalog.DefaultABV(ctx, beerType)
	}
	if abv == 0 {
		abv = bac.DefaultAlcoholPercentage
	}
	event.VolumeMilliliters = volume
	event.AlcoholPercentage = abv
	if beerType != "" {
		event.Type = &beerType
	}

	err = ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Consume first: no drink is recorded against an empty lot.
		if lot != nil {
			if err := ds.lotRepo.DecrementRemaining(ctx, tx, lot.ID, 1); err != nil {
				return err
			}
		}
		_, err := ds.eventRepo.Create(ctx, tx, []*types.DrinkEvent{event})
		return err
	})
	if err != nil {
		if apierr.HasCode(err, apierr.CodeInsufficientQuantity) {
			ds.log.Info("drink rejected: lot exhausted", "user_id", s.UserID, "purchase_id", in.PurchaseID)
			observability.Current().ObserveDrinkRejected("insufficient_quantity")
		}
		return nil, err
	}
	source := "manual"
	if lot != nil {
		source = "lot"
	}
	observability.Current().ObserveDrinkLogged(source)

	ds.log.Info("drink logged", "user_id", s.UserID, "drink_id", event.ID, "volume_ml", event.VolumeMilliliters)
	ds.emitter.Emit(ctx, realtime.SSEMessage{Channel: realtime.ChannelEntries, Event: realtime.SSEEventDrinkEntryCreated, Data: event})
	if lot != nil {
		ds.emitter.Emit(ctx, realtime.SSEMessage{
			Channel: realtime.ChannelEntries,
			Event:   realtime.SSEEventPurchaseLotUpdated,
			Data:    map[string]any{"id": lot.ID, "remaining_quantity": lot.RemainingQuantity - 1},
		})
	}
	return event, nil
}

func (ds *drinkService) DeleteDrink(ctx context.Context, id uuid.UUID) error {
	s, err := requireSession(ctx)
	if err != nil {
		return err
	}
	event, err := ds.eventRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if event.UserID != s.UserID && !s.IsAdmin() {
		return apierr.Forbidden(fmt.Errorf("drink %s belongs to another user", id))
	}

	var restored bool
	switch ds.mode {
	case DeleteCompensating:
		if err := ds.eventRepo.Delete(ctx, nil, id); err != nil {
			return err
		}
		ds.emitDeleted(ctx, event)
		if event.PurchaseID == nil {
			return nil
		}
		restored, err = ds.restore(ctx, nil, *event.PurchaseID)
		if err != nil {
			ds.log.Error("lot restore failed after drink delete", "drink_id", id, "purchase_id", *event.PurchaseID, "error", err)
			return fmt.Errorf("%w: %w", ErrRestoreFailed, err)
		}
	default:
		err = ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := ds.eventRepo.Delete(ctx, tx, id); err != nil {
				return err
			}
			if event.PurchaseID == nil {
				return nil
			}
			var rerr error
			restored, rerr = ds.restore(ctx, tx, *event.PurchaseID)
			return rerr
		})
		if err != nil {
			return err
		}
		ds.emitDeleted(ctx, event)
	}

	if restored {
		ds.emitter.Emit(ctx, realtime.SSEMessage{
			Channel: realtime.ChannelEntries,
			Event:   realtime.SSEEventPurchaseLotUpdated,
			Data:    map[string]any{"id": *event.PurchaseID, "restored": 1},
		})
	}
	ds.log.Info("drink deleted", "drink_id", id, "by_user_id", s.UserID, "restored", restored)
	return nil
}

// restore gives one unit back. A lot that no longer exists or is already
// full is skipped rather than blocking the delete.
func (ds *drinkService) restore(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (bool, error) {
	err := ds.lotRepo.IncrementRemaining(ctx, tx, lotID, 1)
	switch {
	case err == nil:
		observability.Current().ObserveLotRestore("restored")
		return true, nil
	case apierr.HasCode(err, apierr.CodeNotFound), apierr.HasCode(err, apierr.CodeConflict):
		ds.log.Warn("purchase lot not restored", "purchase_id", lotID, "error", err)
		observability.Current().ObserveLotRestore("skipped")
		return false, nil
	default:
		observability.Current().ObserveLotRestore("failed")
		return false, err
	}
}

func (ds *drinkService) emitDeleted(ctx context.Context, event *types.DrinkEvent) {
	ds.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ChannelEntries,
		Event:   realtime.SSEEventDrinkEntryDeleted,
		Data:    map[string]any{"id": event.ID, "user_id": event.UserID},
	})
}

func (ds *drinkService) ListDrinks(ctx context.Context, filter DrinkFilter) ([]*types.DrinkEvent, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	var (
		out []*types.DrinkEvent
		err error
	)
	switch {
	case filter.Start != nil || filter.End != nil:
		start := time.Time{}
		end := ds.now().UTC().Add(maxFutureSkew)
		if filter.Start != nil {
			start = *filter.Start
		}
		if filter.End != nil {
			end = *filter.End
		}
		if start.After(end) {
			return nil, apierr.Validation(fmt.Errorf("start is after end"))
		}
		out, err = ds.eventRepo.ListInRange(ctx, nil, start, end)
		if err == nil && filter.UserID != nil {
			out = onlyUser(out, *filter.UserID)
		}
	case filter.UserID != nil:
		out, err = ds.eventRepo.ListByUser(ctx, nil, *filter.UserID)
	default:
		out, err = ds.eventRepo.List(ctx, nil)
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func onlyUser(events []*types.DrinkEvent, userID uuid.UUID) []*types.DrinkEvent {
	out := make([]*types.DrinkEvent, 0, len(events))
	for _, e := range events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
