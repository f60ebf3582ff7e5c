package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"tripgenie/internal/adapters/auth"
	"tripgenie/internal/adapters/gemini"
	server "tripgenie/internal/adapters/http_server"
	"tripgenie/internal/adapters/observability"
	"tripgenie/internal/adapters/ratequote"
	redisad "tripgenie/internal/adapters/redis"
	"tripgenie/internal/app"
	"tripgenie/internal/currency"
	"tripgenie/internal/shared"
	mysqlrepo "tripgenie/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// currency
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; rates will not persist across restarts")
	}
	conv := currency.NewConverter(
		ratequote.New(cfg.RatesBaseURL, cfg.RatesRPS),
		cache,
		currency.WithTTL(cfg.RatesTTL),
		currency.WithDefaultCurrency(cfg.DefaultCurrency),
	)
	src := conv.Initialize(ctx)
	log.Info().Str("source", string(src)).Msg("exchange rates loaded")
	go conv.RunRefresher(ctx, cfg.RatesRefresh)

	h := &server.Handlers{Conv: conv}

	// itinerary generation
	if cfg.GeminiKey != "" {
		gen, err := gemini.New(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini init failed")
		}
		defer gen.Close()
		h.Planner = app.NewPlanner(gen, conv)
	}

	// auth + wishlist
	if cfg.FirebaseProject != "" {
		v, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProject, cfg.FirebaseCredentials)
		if err != nil {
			log.Fatal().Err(err).Msg("firebase init failed")
		}
		h.Verifier = v

		if cfg.MySQLDSN != "" {
			db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
			if err != nil {
				log.Fatal().Err(err).Msg("mysql open failed")
			}
			defer db.Close()
			log.Info().Msg("database connection ok")
			h.Wishlist = app.NewWishlistService(mysqlrepo.New(db), cache, cfg.WishlistCacheTTL)
		}
	}

	// http
	srv := server.New(cfg.HTTPTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
