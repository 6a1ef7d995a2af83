package main

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/Vitaee/FlexReviewApi/internal/adapters/hostaway"
	"github.com/Vitaee/FlexReviewApi/internal/adapters/observability"
	"github.com/Vitaee/FlexReviewApi/internal/app"
	"github.com/Vitaee/FlexReviewApi/internal/domain"
	"github.com/Vitaee/FlexReviewApi/internal/shared"
	mysqlrepo "github.com/Vitaee/FlexReviewApi/internal/storage/mysql"
)

// Backfills one approval record per mock review so listing filters work
// before any manager has toggled anything. Existing flags are never touched.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("mock", cfg.MockDataPath).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	source := hostaway.NewFileSource(cfg.MockDataPath)

	raws, err := source.FetchReviews(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("loading mock reviews failed")
	}
	log.Info().Int("count", len(raws)).Msg("loaded raw reviews")

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	seeded := 0
	var mu sync.Mutex

	for _, raw := range raws {
		nr, nerr := app.Normalize(raw)
		if nerr != nil {
			if errors.Is(nerr, domain.ErrMalformedRecord) {
				log.Warn().Err(nerr).Msg("skipping malformed review")
				continue
			}
			log.Fatal().Err(nerr).Msg("normalize failed")
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(id int64, listingID *string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := repo.EnsureRecord(ctx, id, listingID); err != nil {
				log.Warn().Int64("review_id", id).Err(err).Msg("seed failed")
				return
			}
			mu.Lock()
			seeded++
			mu.Unlock()
		}(nr.ID, nr.ListingID)
	}

	wg.Wait()
	log.Info().Int("seeded", seeded).Msg("seeding completed")
}
