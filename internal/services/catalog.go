package services

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/bac"
	"github.com/yungbote/pintlog-backend/internal/data/repos"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

type Catalog struct {
	BeerTypes     []*types.BeerType `json:"beer_types"`
	CommonSizesML []int             `json:"common_sizes_ml"`
	DefaultABV    float64           `json:"default_abv"`
	// Fallback is true when the store had no beer types and the built-in
	// list was returned.
	Fallback bool `json:"fallback"`
}

type CatalogService interface {
	Catalog(ctx context.Context) (*Catalog, error)
	// DefaultABV returns the catalog ABV for a beer type name, or zero.
	DefaultABV(ctx context.Context, beerType string) float64
	SeedDefaults(ctx context.Context) error
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	beerTypeRepo repos.BeerTypeRepo
	presets      *bac.Presets
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, beerTypeRepo repos.BeerTypeRepo, presets *bac.Presets) CatalogService {
	return &catalogService{
		db:           db,
		log:          log.With("service", "CatalogService"),
		beerTypeRepo: beerTypeRepo,
		presets:      presets,
	}
}

func (cs *catalogService) defaults() []*types.BeerType {
	out := make([]*types.BeerType, 0, len(cs.presets.BeerTypes))
	for _, bt := range cs.presets.BeerTypes {
		abv := bt.ABV
		if abv <= 0 {
			abv = cs.presets.DefaultABV
		}
		aliases, _ := json.Marshal([]string{})
		out = append(out, &types.BeerType{Name: bt.Name, DefaultABV: abv, Aliases: datatypes.JSON(aliases)})
	}
	return out
}

// Catalog falls back to the built-in list only when the store is empty; a
// failed fetch is reported, not masked.
func (cs *catalogService) Catalog(ctx context.Context) (*Catalog, error) {
	rows, err := cs.beerTypeRepo.List(ctx, nil)
	if err != nil {
		cs.log.Warn("beer type fetch failed", "error", err)
		return nil, unavailable(err)
	}
	out := &Catalog{
		BeerTypes:     rows,
		CommonSizesML: cs.presets.CommonSizesML,
		DefaultABV:    cs.presets.DefaultABV,
	}
	if len(rows) == 0 {
		out.BeerTypes = cs.defaults()
		out.Fallback = true
	}
	return out, nil
}

func (cs *catalogService) DefaultABV(ctx context.Context, beerType string) float64 {
	if beerType == "" {
		return 0
	}
	cat, err := cs.Catalog(ctx)
	if err != nil {
		return 0
	}
	for _, bt := range cat.BeerTypes {
		if strings.EqualFold(bt.Name, strings.TrimSpace(beerType)) {
			return bt.DefaultABV
		}
	}
	return 0
}

func (cs *catalogService) SeedDefaults(ctx context.Context) error {
	if err := cs.beerTypeRepo.SeedDefaults(ctx, nil, cs.defaults()); err != nil {
		return err
	}
	cs.log.Info("beer type catalog seeded", "count", len(cs.presets.BeerTypes))
	return nil
}
