package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// runSeed inserts a demo publisher and one draft event waiting on admin
// publish. It is a no-op when publishers already exist.
func runSeed(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM publishers)`).Scan(&exists); err != nil {
		return fmt.Errorf("check publishers: %w", err)
	}
	if exists {
		logger.Info().Msg("database already has data, skipping seed")
		return nil
	}

	const demoKey = "enumclawevents-demo-key-123456"
	var publisherID int64
	err := pool.QueryRow(ctx, `
INSERT INTO publishers (name, api_key, allowed_cities, is_active)
VALUES ($1, $2, $3, TRUE)
RETURNING id`,
		"EnumclawEvents", demoKey, "Enumclaw",
	).Scan(&publisherID)
	if err != nil {
		return fmt.Errorf("insert publisher: %w", err)
	}

	now := time.Now().UTC()
	start := time.Date(2026, 1, 25, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	_, err = pool.Exec(ctx, `
INSERT INTO events (city, title, description, start_datetime, end_datetime,
	location, organizer, status, source_url, external_id, created_at, updated_at, publisher_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, 'draft', $8, $9, $10, $10, $11)`,
		"Enumclaw",
		"OpenCircle Launch Meetup",
		"Submitted by publisher; waiting on admin publish.",
		start, end,
		"Enumclaw, WA",
		"OpenCircle",
		"https://example.com/event",
		"example-001",
		now,
		publisherID,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	logger.Info().Str("publisher_key", demoKey).Msg("seed complete, draft event needs admin publish")
	return nil
}
