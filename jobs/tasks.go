package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity rebuilds the statements and checks they balance.
	TaskLedgerIntegrity = "ledger:integrity"
)

// IntegrityPayload describes one integrity run. An empty AsOf checks every entry.
type IntegrityPayload struct {
	RunID string `json:"run_id,omitempty"`
	AsOf  string `json:"as_of,omitempty"`
}

// AsOfDate parses AsOf.
func (p IntegrityPayload) AsOfDate() (*time.Time, error) {
	if p.AsOf == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", p.AsOf)
	if err != nil {
		return nil, fmt.Errorf("jobs: invalid as_of %q: %w", p.AsOf, err)
	}
	return &t, nil
}

// NewIntegrityTask constructs an on-demand integrity task whose task id is
// also its run id.
func NewIntegrityTask(asOf *time.Time) (*asynq.Task, error) {
	payload := IntegrityPayload{RunID: uuid.NewString()}
	if asOf != nil {
		payload.AsOf = asOf.Format("2006-01-02")
	}
	return newIntegrityTask(payload, asynq.TaskID(payload.RunID))
}

// NewScheduledIntegrityTask constructs the cron variant. Asynq assigns a new
// task id on every tick, so the payload carries no run id.
func NewScheduledIntegrityTask() (*asynq.Task, error) {
	return newIntegrityTask(IntegrityPayload{})
}

func newIntegrityTask(payload IntegrityPayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts = append([]asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(5 * time.Minute),
	}, opts...)
	return asynq.NewTask(TaskLedgerIntegrity, data, opts...), nil
}
