package scheduler

import (
	"context"
	"time"

	"funnel_backend/platform/logger"
)

const defaultScoreRefreshInterval = 6 * time.Hour

// ScoreRefreshDispatcher periodically enqueues a score-refresh sweep.
// Lead scores decay with activity recency, so an untouched lead's score
// drifts stale without this.
type ScoreRefreshDispatcher struct {
	client   *Client
	log      *logger.Logger
	interval time.Duration
}

func NewScoreRefreshDispatcher(client *Client, log *logger.Logger, interval time.Duration) *ScoreRefreshDispatcher {
	if interval <= 0 {
		interval = defaultScoreRefreshInterval
	}

	return &ScoreRefreshDispatcher{
		client:   client,
		log:      log,
		interval: interval,
	}
}

func (d *ScoreRefreshDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	d.dispatch(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *ScoreRefreshDispatcher) dispatch(ctx context.Context) {
	payload := ScoreRefreshPayload{RequestedAt: time.Now().UTC()}
	if err := d.client.EnqueueScoreRefresh(ctx, payload); err != nil {
		d.log.Warn("score refresh enqueue failed", "error", err)
		return
	}
	d.log.Info("score refresh sweep enqueued")
}
