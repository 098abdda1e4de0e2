package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/enumclawevents/opencircle-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, city, title, description, start_datetime, end_datetime,
location, organizer, status, source_url, external_id, created_at, updated_at, publisher_id`

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	const stmt = `
INSERT INTO events (city, title, description, start_datetime, end_datetime,
	location, organizer, status, source_url, external_id, created_at, updated_at, publisher_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`
	err := queryRow(ctx, r.pool, stmt,
		event.City,
		event.Title,
		event.Description,
		event.StartDatetime,
		event.EndDatetime,
		event.Location,
		event.Organizer,
		event.Status,
		event.SourceURL,
		event.ExternalID,
		event.CreatedAt,
		event.UpdatedAt,
		event.PublisherID,
	).Scan(&event.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Event{}, domain.ErrDuplicateExternalID
		}
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id int64) (domain.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(queryRow(ctx, r.pool, q, id))
}

// GetEventForUpdate locks the row for the remainder of the enclosing
// transaction.
func (r *EventRepository) GetEventForUpdate(ctx context.Context, id int64) (domain.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return scanEvent(queryRow(ctx, r.pool, q, id))
}

func (r *EventRepository) UpdateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
UPDATE events
SET city = $2, title = $3, description = $4, start_datetime = $5, end_datetime = $6,
	location = $7, organizer = $8, status = $9, source_url = $10, external_id = $11,
	updated_at = $12
WHERE id = $1`
	tag, err := exec(ctx, r.pool, stmt,
		event.ID,
		event.City,
		event.Title,
		event.Description,
		event.StartDatetime,
		event.EndDatetime,
		event.Location,
		event.Organizer,
		event.Status,
		event.SourceURL,
		event.ExternalID,
		event.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateExternalID
		}
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id int64) error {
	tag, err := exec(ctx, r.pool, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	var conds []string
	var args []any

	if filter.City != "" {
		args = append(args, filter.City)
		conds = append(conds, fmt.Sprintf("LOWER(city) = LOWER($%d)", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	q := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	// Secondary id ordering keeps offset pages stable while rows share a
	// timestamp.
	if filter.NewestFirst {
		q += " ORDER BY created_at DESC, id DESC"
	} else {
		q += " ORDER BY start_datetime ASC, id ASC"
	}
	args = append(args, filter.Limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := query(ctx, r.pool, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.City,
		&e.Title,
		&e.Description,
		&e.StartDatetime,
		&e.EndDatetime,
		&e.Location,
		&e.Organizer,
		&e.Status,
		&e.SourceURL,
		&e.ExternalID,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.PublisherID,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}
