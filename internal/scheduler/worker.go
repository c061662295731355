package scheduler

import (
	"context"
	"fmt"
	"time"

	"funnel_backend/internal/leads/domain"
	"funnel_backend/internal/leads/repository"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

// refreshParallelism bounds how many leads are recomputed at once.
// Leads are independent entities, so the sweep can fan out safely.
const refreshParallelism = 8

// ScoreRefresher recomputes a single lead's score.
type ScoreRefresher interface {
	RecomputeScore(ctx context.Context, id uuid.UUID) (*domain.Lead, error)
}

// Worker consumes scheduled tasks from the redis queue.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	leads     repository.LeadReader
	refresher ScoreRefresher
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, leads repository.LeadReader, refresher ScoreRefresher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		leads:     leads,
		refresher: refresher,
		log:       log,
	}

	mux.HandleFunc(TaskLeadScoreRefresh, w.handleScoreRefresh)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleScoreRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScoreRefreshPayload(task)
	if err != nil {
		return err
	}

	leads, err := w.leads.ListLeads(ctx, repository.LeadFilter{})
	if err != nil {
		return err
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshParallelism)
	refreshed := 0
	for _, lead := range leads {
		if !lead.IsMutable() {
			continue
		}
		refreshed++
		id := lead.ID
		g.Go(func() error {
			_, err := w.refresher.RecomputeScore(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w.log.Info("score refresh sweep complete",
		"leads", refreshed,
		"scoreVersion", domain.ScoreVersion,
		"elapsed", time.Since(start).String(),
		"requestedAt", payload.RequestedAt)
	return nil
}
