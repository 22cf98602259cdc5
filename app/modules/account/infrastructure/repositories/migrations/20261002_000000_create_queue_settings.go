package accountmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating queue_settings table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS queue_settings (
				user_id BIGINT PRIMARY KEY,
				username TEXT UNIQUE,
				games_per_round INTEGER CHECK (games_per_round IS NULL OR games_per_round > 0),
				fast_track_enabled BOOLEAN NOT NULL DEFAULT FALSE,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create queue_settings table: %w", err)
		}

		fmt.Println("queue_settings table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping queue_settings table...")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS queue_settings;`); err != nil {
			return fmt.Errorf("failed to drop queue_settings table: %w", err)
		}
		return nil
	})
}
