package drinks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/data/repos/repoerr"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

type DrinkEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.DrinkEvent) ([]*types.DrinkEvent, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.DrinkEvent, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DrinkEvent, error)
	ListInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.DrinkEvent, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.DrinkEvent, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type drinkEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDrinkEventRepo(db *gorm.DB, baseLog *logger.Logger) DrinkEventRepo {
	repoLog := baseLog.With("repo", "DrinkEventRepo")
	return &drinkEventRepo{db: db, log: repoLog}
}

// ordered is the stable listing order: time, then insertion, then id.
func ordered(q *gorm.DB) *gorm.DB {
	return q.Order("occurred_at ASC, created_at ASC, id ASC")
}

func (r *drinkEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.DrinkEvent) ([]*types.DrinkEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(events) == 0 {
		return []*types.DrinkEvent{}, nil
	}
	now := time.Now().UTC()
	for _, e := range events {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
	}
	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, repoerr.Map("create drink events", err)
	}
	return events, nil
}

func (r *drinkEventRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.DrinkEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DrinkEvent
	if err := ordered(transaction.WithContext(ctx)).Find(&results).Error; err != nil {
		return nil, repoerr.Map("list drink events", err)
	}
	return results, nil
}

func (r *drinkEventRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DrinkEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DrinkEvent
	if err := ordered(transaction.WithContext(ctx)).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, repoerr.Map("list drink events by user", err)
	}
	return results, nil
}

// ListInRange returns events with start <= occurred_at <= end.
func (r *drinkEventRepo) ListInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.DrinkEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DrinkEvent
	if err := ordered(transaction.WithContext(ctx)).
		Where("occurred_at >= ? AND occurred_at <= ?", start.UTC(), end.UTC()).
		Find(&results).Error; err != nil {
		return nil, repoerr.Map("list drink events in range", err)
	}
	return results, nil
}

func (r *drinkEventRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.DrinkEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var e types.DrinkEvent
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, repoerr.Map("get drink event", err)
	}
	return &e, nil
}

func (r *drinkEventRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.DrinkEvent{})
	if res.Error != nil {
		return repoerr.Map("delete drink event", res.Error)
	}
	if res.RowsAffected == 0 {
		return repoerr.Map("delete drink event", gorm.ErrRecordNotFound)
	}
	return nil
}
