package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tripgenie/internal/adapters/observability"
	"tripgenie/internal/adapters/ratequote"
	redisad "tripgenie/internal/adapters/redis"
	"tripgenie/internal/currency"
	"tripgenie/internal/domain"
	"tripgenie/internal/shared"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Strs("bases", cfg.SyncBases).
		Int("workers", cfg.SyncWorkers).
		Msg("ratesync starting")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	client := ratequote.New(cfg.RatesBaseURL, cfg.RatesRPS)

	sem := semaphore.NewWeighted(int64(cfg.SyncWorkers))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, base := range cfg.SyncBases {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(base string) {
			defer wg.Done()
			defer sem.Release(1)

			// one converter per base so each refresh writes its own cache keys
			conv := currency.NewConverter(client, cache, currency.WithTTL(cfg.RatesTTL))
			if src := conv.Refresh(ctx, base); src != domain.SourceRemote {
				failed.Add(1)
				log.Warn().Str("base", base).Str("source", string(src)).Msg("refresh failed")
				return
			}
			log.Info().Str("base", base).Msg("refresh ok")
		}(base)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Fatal().Int32("failed", n).Msg("ratesync completed with failures")
	}
	log.Info().Msg("ratesync completed")
}
