package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/yungbote/pintlog-backend/internal/app"
	types "github.com/yungbote/pintlog-backend/internal/domain"
)

var sizes = []float64{330, 500, 568, 1000}

func main() {
	var users, drinks int
	var spread time.Duration
	var seed int64
	var verify bool
	flag.IntVar(&users, "users", 3, "number of demo users to create")
	flag.IntVar(&drinks, "drinks", 50, "number of drink events to insert")
	flag.DurationVar(&spread, "spread", 72*time.Hour, "spread events over this much history")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	flag.BoolVar(&verify, "verify", true, "re-read the store and check the inserted events are present")
	flag.Parse()

	if users <= 0 || drinks < 0 || spread <= 0 {
		fmt.Println("users must be > 0, drinks >= 0, spread > 0")
		os.Exit(2)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(seed))

	roster := make([]*types.User, 0, users)
	for i := 0; i < users; i++ {
		id := uuid.New()
		u, err := application.Repos.User.Upsert(ctx, nil, &types.User{
			ID:    id,
			Name:  fmt.Sprintf("Demo %d", i+1),
			Email: fmt.Sprintf("demo-%s@pintlog.local", id.String()[:8]),
		})
		if err != nil {
			fmt.Printf("create user: %v\n", err)
			os.Exit(1)
		}
		roster = append(roster, u)
	}

	beerTypes, err := application.Services.Catalog.Catalog(ctx)
	if err != nil {
		fmt.Printf("load catalog: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	inserted := make(map[uuid.UUID]bool, drinks)
	bar := progressbar.Default(int64(drinks), "inserting drinks")
	for i := 0; i < drinks; i++ {
		u := roster[rng.Intn(len(roster))]
		bt := beerTypes.BeerTypes[rng.Intn(len(beerTypes.BeerTypes))]
		name := bt.Name
		abv := bt.DefaultABV
		if abv <= 0 {
			abv = beerTypes.DefaultABV
		}
		created, err := application.Services.Store.InsertEntry(ctx, &types.DrinkEvent{
			UserID:            u.ID,
			UserName:          u.Name,
			VolumeMilliliters: sizes[rng.Intn(len(sizes))],
			AlcoholPercentage: abv,
			OccurredAt:        now.Add(-time.Duration(rng.Int63n(int64(spread)))),
			Type:              &name,
		})
		if err != nil {
			fmt.Printf("\ninsert drink: %v\n", err)
			os.Exit(1)
		}
		inserted[created.ID] = true
		_ = bar.Add(1)
	}
	fmt.Println()

	if verify {
		all, err := application.Services.Store.ListEntries(ctx)
		if err != nil {
			fmt.Printf("list entries: %v\n", err)
			os.Exit(1)
		}
		found := 0
		for _, e := range all {
			if inserted[e.ID] {
				found++
			}
		}
		if found != len(inserted) {
			fmt.Printf("verify: want=%d got=%d\n", len(inserted), found)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded %d users and %d drinks (seed=%d)\n", len(roster), len(inserted), seed)
}
