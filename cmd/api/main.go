package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_booking/internal/adapters/auth"
	"hotel_booking/internal/adapters/events"
	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/adapters/payments"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	if cfg.DotEnv {
		log.Debug().Msg("loaded .env")
	}
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// store
	repo, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store failed")
	}
	defer closeStore()

	// optional collaborators stay nil interfaces when unconfigured
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, running without cache")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	var ev domain.BookingEvents
	if cfg.AMQPURL != "" {
		pub := events.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		ev = pub
	}

	var pg domain.PaymentGateway = payments.Local{}
	if cfg.PaymentsProvider == "stripe" {
		pg = payments.NewStripe(cfg.StripeKey, cfg.Currency)
	}
	log.Info().
		Str("store", cfg.StoreDriver).
		Str("payments", pg.Name()).
		Bool("cache", cache != nil).
		Bool("events", ev != nil).
		Msg("dependencies ready")

	// http
	srv := server.New(
		server.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		server.Authenticate(auth.NewVerifier(cfg.JWTSecret)),
	)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:   app.NewQueryService(repo, cache, cfg.CacheTTL),
		Inv: app.NewInventoryService(repo, cache),
		Res: app.NewReservationService(repo, cache, pg, ev),
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("http server failed")
	}
}
