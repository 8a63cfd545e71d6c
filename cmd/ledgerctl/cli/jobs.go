package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/internal/app"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-ledger/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	opt := cache.QueueOpt(redisAddr)
	client, err := jobs.NewClient(opt)
	if err != nil {
		return nil, err
	}
	return &JobsCLI{client: client, inspector: asynq.NewInspector(opt)}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		err = errors.Join(err, c.inspector.Close())
	}
	if c.client != nil {
		err = errors.Join(err, c.client.Close())
	}
	return err
}

// Trigger enqueues a supported job by name.
func (c *JobsCLI) Trigger(ctx context.Context, name, asOf string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	switch name {
	case jobs.TaskLedgerIntegrity, "integrity":
		filter, err := parseTo(asOf)
		if err != nil {
			return nil, err
		}
		return c.client.EnqueueIntegrity(ctx, filter.To)
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (jobs.QueueStats, error) {
	if c == nil || c.inspector == nil {
		return jobs.QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	return jobs.Stats(c.inspector)
}

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}

	var asOf string
	trigger := &cobra.Command{
		Use:   "trigger <job>",
		Short: "Enqueue a job (ledger:integrity)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openJobs()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			info, err := c.Trigger(cmd.Context(), args[0], asOf)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("enqueued %s as %s on %s", info.Type, info.ID, info.Queue))
			return nil
		},
	}
	trigger.Flags().StringVar(&asOf, "as-of", "", "check entries dated on or before YYYY-MM-DD")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show default queue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openJobs()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			s, err := c.InspectQueue()
			if err != nil {
				return err
			}
			renderQueueStats(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.AddCommand(trigger, stats)
	return cmd
}

func openJobs() (*JobsCLI, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return NewJobsCLI(cfg.RedisAddr)
}
