package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-engine/internal/infrastructure/monitoring"

	"github.com/robfig/cron/v3"
)

const (
	overdueJobName        = "overdue_sweep"
	defaultOverdueSpec    = "0 1 * * *"
	defaultOverdueTimeout = 30 * time.Minute
)

type overdueMarker interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (entries int64, loanIDs []int64, err error)
}

// OverdueJob flags installments whose due date has passed and moves the
// owning loans to overdue.
type OverdueJob struct {
	loans   overdueMarker
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewOverdueJob(loans overdueMarker, timeout time.Duration, logger *slog.Logger) *OverdueJob {
	if loans == nil || logger == nil {
		panic("OverdueJob dependencies cannot be nil")
	}
	if timeout <= 0 {
		timeout = defaultOverdueTimeout
	}
	return &OverdueJob{
		loans:   loans,
		timeout: timeout,
		logger:  logger.With("job", "OverdueSweep"),
		now:     time.Now,
	}
}

// Run compares due dates against the start of the current UTC day, so an
// installment due today is not overdue until tomorrow's run.
func (j *OverdueJob) Run(ctx context.Context) error {
	startTime := j.now()
	asOf := startTime.UTC().Truncate(24 * time.Hour)
	j.logger.InfoContext(ctx, "Starting overdue sweep.", slog.Time("asOf", asOf))

	entries, loanIDs, err := j.loans.MarkOverdue(ctx, asOf)
	if err != nil {
		monitoring.RecordBatchRun(overdueJobName, "error")
		j.logger.ErrorContext(ctx, "Overdue sweep failed", slog.Int64("installments_marked", entries), slog.Any("error", err))
		return fmt.Errorf("overdue sweep failed: %w", err)
	}

	monitoring.RecordBatchRun(overdueJobName, "success")
	j.logger.InfoContext(ctx, "Overdue sweep finished successfully.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int64("installments_marked", entries),
		slog.Int("loans_marked", len(loanIDs)),
	)
	return nil
}

// Schedule registers the job on c; an empty spec falls back to daily at 01:00.
func (j *OverdueJob) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	if spec == "" {
		spec = defaultOverdueSpec
		j.logger.Warn("Overdue sweep schedule not configured, using default", "schedule", spec)
	}

	id, err := c.AddJob(spec, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		j.logger.Info("Cron triggered: running overdue sweep.")
		if runErr := j.Run(ctx); runErr != nil {
			j.logger.Error("Overdue sweep finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		return 0, fmt.Errorf("failed to schedule overdue sweep %q: %w", spec, err)
	}
	j.logger.Info("Scheduled overdue sweep", "schedule", spec, "job_id", id)
	return id, nil
}
