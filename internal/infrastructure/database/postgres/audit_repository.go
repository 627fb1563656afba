package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"loan-engine/internal/domain/audit"
	"loan-engine/internal/pkg/apperrors"
)

// AuditRepository appends audit entries to the audit_logs table.
type AuditRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ audit.Writer = (*AuditRepository)(nil)

func NewAuditRepository(db DBPool, logger *slog.Logger) *AuditRepository {
	return &AuditRepository{db: db, logger: logger.With("component", "AuditRepository")}
}

const insertAuditSQL = `
        INSERT INTO audit_logs (entity_type, entity_id, action, payload, actor_id, actor_type, source, correlation_id, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (r *AuditRepository) Write(ctx context.Context, entry audit.Entry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("%w: cannot encode audit payload: %w", apperrors.ErrInvalidArgument, err)
	}

	var actorID *int64
	if entry.ActorID != 0 {
		actorID = &entry.ActorID
	}

	done := timeQuery("WriteAudit")
	_, err = r.db.Exec(ctx, insertAuditSQL,
		entry.EntityType, entry.EntityID, entry.Action, payload, actorID,
		entry.ActorType, entry.Source, nullIfEmpty(entry.CorrelationID), entry.OccurredAt,
	)
	done(err)
	if err != nil {
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}
