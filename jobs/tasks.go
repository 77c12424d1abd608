package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNotificationPrune prunes stale ids from all hidden sets.
	TaskNotificationPrune = "notif:prune"
	// TaskNotificationRevalidate removes approval notifications whose
	// referenced record is no longer pending.
	TaskNotificationRevalidate = "notif:revalidate"
)

// SweepPayload carries scheduling metadata for the notification sweeps.
type SweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewNotificationPruneTask constructs an Asynq task for hidden-set pruning.
func NewNotificationPruneTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SweepPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationPrune, body, asynq.Queue(QueueDefault)), nil
}

// NewNotificationRevalidateTask constructs an Asynq task for the approval
// revalidation sweep.
func NewNotificationRevalidateTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SweepPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationRevalidate, body, asynq.Queue(QueueDefault)), nil
}
