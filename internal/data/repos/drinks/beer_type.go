package drinks

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/pintlog-backend/internal/data/repos/repoerr"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

type BeerTypeRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.BeerType, error)
	// SeedDefaults inserts rows whose name is not present yet.
	SeedDefaults(ctx context.Context, tx *gorm.DB, defaults []*types.BeerType) error
}

type beerTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBeerTypeRepo(db *gorm.DB, baseLog *logger.Logger) BeerTypeRepo {
	return &beerTypeRepo{db: db, log: baseLog.With("repo", "BeerTypeRepo")}
}

func (r *beerTypeRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.BeerType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.BeerType
	if err := transaction.WithContext(ctx).Order("name ASC").Find(&results).Error; err != nil {
		return nil, repoerr.Map("list beer types", err)
	}
	return results, nil
}

func (r *beerTypeRepo) SeedDefaults(ctx context.Context, tx *gorm.DB, defaults []*types.BeerType) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(defaults) == 0 {
		return nil
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&defaults).Error
	if err != nil {
		return repoerr.Map("seed beer types", err)
	}
	return nil
}
