package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema holds the roster and ledger tables. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		subject TEXT NOT NULL,
		campus TEXT NOT NULL DEFAULT '',
		duration_slots INTEGER NOT NULL DEFAULT 24,
		remaining_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		constraints JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS teachers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		subjects TEXT NOT NULL DEFAULT '',
		campus TEXT NOT NULL DEFAULT '',
		max_weekly_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		constraints JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS classrooms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		campus TEXT NOT NULL DEFAULT '',
		capacity INTEGER NOT NULL DEFAULT 0,
		constraints JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES students(id),
		teacher_id TEXT NOT NULL REFERENCES teachers(id),
		classroom_id TEXT NOT NULL REFERENCES classrooms(id),
		subject TEXT NOT NULL,
		day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		start_slot INTEGER NOT NULL,
		duration_slots INTEGER NOT NULL,
		score DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS modification_records (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT NOT NULL,
		target_name TEXT NOT NULL DEFAULT '',
		field TEXT NOT NULL,
		old_value JSONB,
		new_value JSONB,
		reason TEXT NOT NULL DEFAULT '',
		conflict_id TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_modification_records_target ON modification_records (target_type, target_id)`,
	`CREATE INDEX IF NOT EXISTS idx_modification_records_conflict ON modification_records (conflict_id)`,
}

// EnsureSchema creates missing tables.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
