package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"funnel_backend/internal/enrichment"
	"funnel_backend/internal/events"
	apphttp "funnel_backend/internal/http"
	"funnel_backend/internal/http/router"
	"funnel_backend/internal/leads"
	"funnel_backend/internal/leads/repository"
	"funnel_backend/internal/scheduler"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// In-memory entity store; persistence is owned by collaborators
	// outside this core, so the store only has to honor snapshot reads.
	store := repository.NewStore()

	cacheClient := initCache(cfg, log)
	if cacheClient != nil {
		defer func() { _ = cacheClient.Close() }()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(store, eventBus, val, log)
	enrichmentModule := enrichment.NewModule(cfg, cacheClient, val, log)

	// The score-refresh worker runs in this process: it is the only one
	// holding the lead store, so sweeps enqueued by cmd/scheduler must be
	// consumed here. Skipped when no queue is configured.
	if cfg.GetRedisURL() != "" {
		worker, err := scheduler.NewWorker(cfg, store, leadsModule.ManagementService(), log)
		if err != nil {
			log.Error("failed to initialize score refresh worker", "error", err)
			panic("failed to initialize score refresh worker: " + err.Error())
		}
		go worker.Run(ctx)
	} else {
		log.Warn("REDIS_URL not configured; periodic score refresh disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			enrichmentModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initCache connects the redis cache used by the enrichment gateway.
// Missing REDIS_URL just disables caching.
func initCache(cfg config.CacheConfig, log *logger.Logger) *redis.Client {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		log.Warn("REDIS_URL not configured; enrichment caching disabled")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Error("invalid REDIS_URL; enrichment caching disabled", "error", err)
		return nil
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable at startup; enrichment caching degraded", "error", err)
	}

	return client
}
