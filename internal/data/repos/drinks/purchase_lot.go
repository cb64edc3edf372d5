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

type PurchaseLotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lot *types.PurchaseLot) (*types.PurchaseLot, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PurchaseLot, error)
	ListWithRemainingAbove(ctx context.Context, tx *gorm.DB, n int) ([]*types.PurchaseLot, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PurchaseLot, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PurchaseLot, error)
	DecrementRemaining(ctx context.Context, tx *gorm.DB, id uuid.UUID, by int) error
	IncrementRemaining(ctx context.Context, tx *gorm.DB, id uuid.UUID, by int) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type purchaseLotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPurchaseLotRepo(db *gorm.DB, baseLog *logger.Logger) PurchaseLotRepo {
	repoLog := baseLog.With("repo", "PurchaseLotRepo")
	return &purchaseLotRepo{db: db, log: repoLog}
}

func (r *purchaseLotRepo) Create(ctx context.Context, tx *gorm.DB, lot *types.PurchaseLot) (*types.PurchaseLot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	lot.CreatedAt = now
	lot.UpdatedAt = now
	if err := transaction.WithContext(ctx).Create(lot).Error; err != nil {
		return nil, repoerr.Map("create purchase lot", err)
	}
	return lot, nil
}

func (r *purchaseLotRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PurchaseLot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var lot types.PurchaseLot
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&lot).Error; err != nil {
		return nil, repoerr.Map("get purchase lot", err)
	}
	return &lot, nil
}

func (r *purchaseLotRepo) ListWithRemainingAbove(ctx context.Context, tx *gorm.DB, n int) ([]*types.PurchaseLot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PurchaseLot
	if err := transaction.WithContext(ctx).
		Where("remaining_quantity > ?", n).
		Order("purchase_date DESC, id ASC").
		Find(&results).Error; err != nil {
		return nil, repoerr.Map("list available purchase lots", err)
	}
	return results, nil
}

func (r *purchaseLotRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PurchaseLot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PurchaseLot
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("purchase_date DESC, id ASC").
		Find(&results).Error; err != nil {
		return nil, repoerr.Map("list purchase lots by user", err)
	}
	return results, nil
}

// ListRecent returns the newest lots of every user by purchase date.
func (r *purchaseLotRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PurchaseLot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PurchaseLot
	if err := transaction.WithContext(ctx).
		Order("purchase_date DESC, id ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, repoerr.Map("list recent purchase lots", err)
	}
	return results, nil
}

// DecrementRemaining is a single conditional UPDATE; concurrent callers can
// never drive remaining_quantity below zero.
func (r *purchaseLotRepo) DecrementRemaining(ctx context.Context, tx *gorm.DB, id uuid.UUID, by int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if by <= 0 {
		by = 1
	}
	res := transaction.WithContext(ctx).
		Model(&types.PurchaseLot{}).
		Where("id = ? AND remaining_quantity >= ?", id, by).
		Updates(map[string]any{
			"remaining_quantity": gorm.Expr("remaining_quantity - ?", by),
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return repoerr.Map("decrement purchase lot", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := r.exists(ctx, transaction, id); err != nil {
			return repoerr.Map("decrement purchase lot", err)
		}
		return repoerr.Map("decrement purchase lot", repoerr.ErrInsufficientQuantity)
	}
	return nil
}

// IncrementRemaining restores units, never beyond total_quantity.
func (r *purchaseLotRepo) IncrementRemaining(ctx context.Context, tx *gorm.DB, id uuid.UUID, by int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if by <= 0 {
		by = 1
	}
	res := transaction.WithContext(ctx).
		Model(&types.PurchaseLot{}).
		Where("id = ? AND remaining_quantity + ? <= total_quantity", id, by).
		Updates(map[string]any{
			"remaining_quantity": gorm.Expr("remaining_quantity + ?", by),
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return repoerr.Map("increment purchase lot", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := r.exists(ctx, transaction, id); err != nil {
			return repoerr.Map("increment purchase lot", err)
		}
		return repoerr.Map("increment purchase lot", repoerr.ErrLotFull)
	}
	return nil
}

func (r *purchaseLotRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.PurchaseLot{})
	if res.Error != nil {
		return repoerr.Map("delete purchase lot", res.Error)
	}
	if res.RowsAffected == 0 {
		return repoerr.Map("delete purchase lot", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *purchaseLotRepo) exists(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&types.PurchaseLot{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
