package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

// ModificationRepository persists the append-only modification ledger.
type ModificationRepository struct {
	db *sqlx.DB
}

// NewModificationRepository constructs the repository.
func NewModificationRepository(db *sqlx.DB) *ModificationRepository {
	return &ModificationRepository{db: db}
}

type modificationRow struct {
	ID         string         `db:"id"`
	SessionID  string         `db:"session_id"`
	CreatedAt  time.Time      `db:"created_at"`
	TargetType string         `db:"target_type"`
	TargetID   string         `db:"target_id"`
	TargetName string         `db:"target_name"`
	Field      string         `db:"field"`
	OldValue   types.JSONText `db:"old_value"`
	NewValue   types.JSONText `db:"new_value"`
	Reason     string         `db:"reason"`
	ConflictID *string        `db:"conflict_id"`
}

const modificationColumns = `id, session_id, created_at, target_type, target_id, target_name, field, old_value, new_value, reason, conflict_id`

// Create appends one ledger entry for the session.
func (r *ModificationRepository) Create(ctx context.Context, sessionID string, record *models.ModificationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	oldValue, err := json.Marshal(record.OldValue)
	if err != nil {
		return fmt.Errorf("encode old value: %w", err)
	}
	newValue, err := json.Marshal(record.NewValue)
	if err != nil {
		return fmt.Errorf("encode new value: %w", err)
	}
	row := modificationRow{
		ID:         record.ID,
		SessionID:  sessionID,
		CreatedAt:  record.Timestamp,
		TargetType: string(record.TargetType),
		TargetID:   record.TargetID,
		TargetName: record.TargetName,
		Field:      record.Field,
		OldValue:   types.JSONText(oldValue),
		NewValue:   types.JSONText(newValue),
		Reason:     record.Reason,
		ConflictID: record.ConflictID,
	}
	const query = `INSERT INTO modification_records (` + modificationColumns + `)
	VALUES (:id, :session_id, :created_at, :target_type, :target_id, :target_name, :field, :old_value, :new_value, :reason, :conflict_id)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create modification record: %w", err)
	}
	return nil
}

// ListBySession returns the ledger of a session in append order.
func (r *ModificationRepository) ListBySession(ctx context.Context, sessionID string) ([]models.ModificationRecord, error) {
	const query = `SELECT ` + modificationColumns + ` FROM modification_records WHERE session_id = $1 ORDER BY created_at, id`
	return r.list(ctx, "list modifications", query, sessionID)
}

// ListByConflict returns entries written while resolving one conflict.
func (r *ModificationRepository) ListByConflict(ctx context.Context, conflictID string) ([]models.ModificationRecord, error) {
	const query = `SELECT ` + modificationColumns + ` FROM modification_records WHERE conflict_id = $1 ORDER BY created_at, id`
	return r.list(ctx, "list modifications by conflict", query, conflictID)
}

// ListByTarget returns the history of a single record.
func (r *ModificationRepository) ListByTarget(ctx context.Context, targetType models.TargetType, targetID string) ([]models.ModificationRecord, error) {
	const query = `SELECT ` + modificationColumns + ` FROM modification_records WHERE target_type = $1 AND target_id = $2 ORDER BY created_at, id`
	return r.list(ctx, "list modifications by target", query, string(targetType), targetID)
}

func (r *ModificationRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]models.ModificationRecord, error) {
	var rows []modificationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records := make([]models.ModificationRecord, 0, len(rows))
	for _, row := range rows {
		record := models.ModificationRecord{
			ID:         row.ID,
			Timestamp:  row.CreatedAt,
			TargetType: models.TargetType(row.TargetType),
			TargetID:   row.TargetID,
			TargetName: row.TargetName,
			Field:      row.Field,
			Reason:     row.Reason,
			ConflictID: row.ConflictID,
		}
		if err := row.OldValue.Unmarshal(&record.OldValue); err != nil {
			return nil, fmt.Errorf("%s: decode old value of %s: %w", op, row.ID, err)
		}
		if err := row.NewValue.Unmarshal(&record.NewValue); err != nil {
			return nil, fmt.Errorf("%s: decode new value of %s: %w", op, row.ID, err)
		}
		records = append(records, record)
	}
	return records, nil
}
