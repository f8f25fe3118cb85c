package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

// seeder loads a JSON array of hotels (the same shape the API returns) into
// the configured store. Each record's userId becomes the owning principal.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	if cfg.DotEnv {
		log.Debug().Msg("loaded .env")
	}
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	log.Info().
		Str("file", cfg.SeedFile).
		Str("store", cfg.StoreDriver).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("read seed file failed")
	}
	var hotels []domain.Hotel
	if err := json.Unmarshal(raw, &hotels); err != nil {
		log.Fatal().Err(err).Msg("decode seed file failed")
	}

	repo, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer closeStore()

	inv := app.NewInventoryService(repo, nil)
	workers := cfg.SeedWorkers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg     sync.WaitGroup
		ok     atomic.Int64
		failed atomic.Int64
	)

	for i, h := range hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(i int, h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)

			created, err := inv.CreateHotel(ctx, domain.Principal(h.OwnerID), h)
			if err != nil {
				failed.Add(1)
				log.Warn().Int("index", i).Str("name", h.Name).Err(err).Msg("seed failed")
				return
			}
			ok.Add(1)
			log.Debug().Str("id", created.ID).Str("name", created.Name).Msg("seed ok")
		}(i, h)
	}

	wg.Wait()
	log.Info().Int64("created", ok.Load()).Int64("failed", failed.Load()).Msg("seeding completed")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}
