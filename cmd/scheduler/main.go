package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"funnel_backend/internal/scheduler"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"
)

// The scheduler binary only enqueues: it ticks the score-refresh sweep
// onto the redis queue. The worker consuming the sweep runs inside the
// API process, which owns the lead store.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "interval", cfg.GetScoreRefreshInterval().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	dispatcher := scheduler.NewScoreRefreshDispatcher(client, log, cfg.GetScoreRefreshInterval())
	dispatcher.Run(ctx)
}
