package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema creates the desk tables. offline_reg holds at most one verification per
// participant; hospitality_reg is overwritten in place.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS admin (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		username VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS college (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS participant (
		id BIGSERIAL PRIMARY KEY,
		college_id BIGINT NOT NULL REFERENCES college(id),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(255) NOT NULL,
		gender SMALLINT NOT NULL,
		category SMALLINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS offline_reg (
		participant_id BIGINT PRIMARY KEY REFERENCES participant(id),
		admin_id BIGINT NOT NULL REFERENCES admin(id),
		verified_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS hospitality_reg (
		participant_id BIGINT PRIMARY KEY REFERENCES participant(id),
		admin_id BIGINT NOT NULL REFERENCES admin(id),
		hostel VARCHAR(255) NOT NULL,
		room VARCHAR(255) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		admin_id BIGINT,
		desk_id VARCHAR(64) NOT NULL DEFAULT '',
		action VARCHAR(64) NOT NULL,
		resource VARCHAR(64) NOT NULL,
		resource_id VARCHAR(64),
		new_values JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	// Participant ids continue after the legacy range so printed codes stay six digits.
	`SELECT setval(pg_get_serial_sequence('participant', 'id'), GREATEST(1000, (SELECT COALESCE(MAX(id), 0) FROM participant)))`,
}

// Migrate applies the desk schema idempotently.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
