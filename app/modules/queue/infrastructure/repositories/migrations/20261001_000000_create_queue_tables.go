package queuemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating queue_rounds and queue_entries tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS queue_rounds (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL,
					sequence INTEGER NOT NULL CHECK (sequence > 0),
					status TEXT NOT NULL DEFAULT 'pending'
						CHECK (status IN ('pending', 'current', 'archived')),
					archived_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CHECK ((status = 'archived') = (archived_at IS NOT NULL))
				);
				CREATE INDEX IF NOT EXISTS idx_queue_rounds_user_status_sequence
					ON queue_rounds(user_id, status, sequence);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_rounds_single_current
					ON queue_rounds(user_id) WHERE status = 'current';
				CREATE INDEX IF NOT EXISTS idx_queue_rounds_archived_at
					ON queue_rounds(archived_at) WHERE status = 'archived';
			`); err != nil {
				return fmt.Errorf("failed to create queue_rounds table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS queue_entries (
					id UUID PRIMARY KEY,
					round_id BIGINT NOT NULL REFERENCES queue_rounds(id) ON DELETE CASCADE,
					position INTEGER NOT NULL,
					label TEXT NOT NULL CHECK (label <> ''),
					fast_track BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_queue_entries_round_position
					ON queue_entries(round_id, position);
			`); err != nil {
				return fmt.Errorf("failed to create queue_entries table: %w", err)
			}

			fmt.Println("Queue tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping queue tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS queue_entries;`); err != nil {
				return fmt.Errorf("failed to drop queue_entries table: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS queue_rounds;`); err != nil {
				return fmt.Errorf("failed to drop queue_rounds table: %w", err)
			}
			return nil
		})
	})
}
