package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type Recorder struct {
	writers []Writer
	logger  *slog.Logger
	now     func() time.Time
}

var _ Sink = (*Recorder)(nil)

func NewRecorder(logger *slog.Logger, writers ...Writer) *Recorder {
	return &Recorder{
		writers: writers,
		logger:  logger.With("component", "AuditRecorder"),
		now:     time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = r.now().UTC()
	}
	if entry.Source == "" {
		entry.Source = DefaultSource
	}
	if entry.CorrelationID == "" {
		entry.CorrelationID = middleware.GetReqID(ctx)
	}

	for _, w := range r.writers {
		if err := r.write(ctx, w, entry); err != nil {
			r.logger.ErrorContext(ctx, "Failed to record audit entry",
				"entityType", entry.EntityType,
				"entityID", entry.EntityID,
				"action", entry.Action,
				"writer", fmt.Sprintf("%T", w),
				"error", err,
			)
		}
	}
}

func (r *Recorder) write(ctx context.Context, w Writer, entry Entry) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("audit writer panicked: %v", rec)
		}
	}()
	return w.Write(ctx, entry)
}
