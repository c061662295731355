package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskLeadScoreRefresh = "leads.score.refresh"

// ScoreRefreshPayload carries the sweep request. RequestedAt lets the
// handler log how stale the scores were when the sweep finally ran.
type ScoreRefreshPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewScoreRefreshTask(payload ScoreRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadScoreRefresh, data), nil
}

func ParseScoreRefreshPayload(task *asynq.Task) (ScoreRefreshPayload, error) {
	var payload ScoreRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScoreRefreshPayload{}, err
	}
	return payload, nil
}
