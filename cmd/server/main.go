package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/avelara/seatsync/internal/config"
	"github.com/avelara/seatsync/internal/database"
	"github.com/avelara/seatsync/internal/handler"
	"github.com/avelara/seatsync/internal/logging"
	"github.com/avelara/seatsync/internal/queue"
	"github.com/avelara/seatsync/internal/repository"
	"github.com/avelara/seatsync/internal/router"
	"github.com/avelara/seatsync/internal/seating"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environments set vars directly

	cfg := config.Load()
	log := logging.New(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	eventRepo := repository.NewEventRepo(db)
	guestRepo := repository.NewGuestRepo(db)
	tableRepo := repository.NewTableRepo(db)
	store := repository.NewBatchStore(db, guestRepo, tableRepo, cfg.Seating.MaxBatchOps)

	applier := seating.NewApplier(store, seating.ApplierConfig{
		ChunkSize:      cfg.Seating.ChunkSize,
		MaxConcurrency: cfg.Seating.ApplyFanout,
		MaxAttempts:    cfg.Seating.RetryAttempts,
		BaseDelay:      cfg.Seating.RetryBaseDelay,
	}, log)
	// Only the balanced strategy ships today; the knob keeps room for
	// an external suggestion strategy behind the same interface.
	if cfg.Seating.AssignStrategy != "balanced" {
		log.Warn().Str("strategy", cfg.Seating.AssignStrategy).Msg("unknown assign strategy, using balanced")
	}
	engine := seating.NewEngine(store, seating.BalancedAssigner{}, applier, log)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, caching and rate limiting disabled")
	}

	h := router.Handlers{
		Events:  handler.NewEventHandler(eventRepo, guestRepo, tableRepo),
		Guests:  handler.NewGuestHandler(eventRepo, guestRepo, tableRepo),
		Tables:  handler.NewTableHandler(eventRepo, tableRepo),
		Seating: handler.NewSeatingHandler(engine, eventRepo, log),
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, h, rdb, config.LoadCacheConfig(), config.LoadRateLimitConfig())

	// Background consumer records seating.synced events; it reconnects
	// on broker failures and never takes the API down.
	go queue.StartSeatingConsumer(log)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
