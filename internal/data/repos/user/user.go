package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/pintlog-backend/internal/data/repos/repoerr"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

type UserRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error)
	UpdateProfile(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string, physiology datatypes.JSON) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

// Upsert inserts the profile or refreshes name and email of an existing row.
func (ur *userRepo) Upsert(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return nil, repoerr.Map("upsert user", err)
	}
	return user, nil
}

func (ur *userRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*types.User
	if err := transaction.WithContext(ctx).
		Order("name ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, repoerr.Map("list users", err)
	}
	return results, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var u types.User
	if err := transaction.WithContext(ctx).
		Where("id = ?", userID).
		First(&u).Error; err != nil {
		return nil, repoerr.Map("get user", err)
	}
	return &u, nil
}

func (ur *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", userIDs).
		Order("name ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, repoerr.Map("get users", err)
	}
	return results, nil
}

func (ur *userRepo) UpdateProfile(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string, physiology datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if name != "" {
		updates["name"] = name
	}
	if physiology != nil {
		updates["physiology"] = physiology
	}
	res := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return repoerr.Map("update user profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return repoerr.Map("update user profile", gorm.ErrRecordNotFound)
	}
	return nil
}
