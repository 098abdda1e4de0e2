package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/enumclawevents/opencircle-api/internal/domain"
	"github.com/enumclawevents/opencircle-api/internal/testutil"
)

func draftEvent(publisherID int64, title string, start time.Time) domain.Event {
	return domain.Event{
		City:          "Enumclaw",
		Title:         title,
		StartDatetime: start,
		Status:        domain.StatusDraft,
		CreatedAt:     start.Add(-24 * time.Hour),
		UpdatedAt:     start.Add(-24 * time.Hour),
		PublisherID:   &publisherID,
	}
}

func TestEventRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewEventRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	start := time.Date(2026, 1, 25, 18, 0, 0, 0, time.UTC)

	t.Run("CreateEvent and GetEvent round-trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		pubID := testutil.InsertPublisher(t, ctx, pool, "EnumclawEvents", "key-1", "Enumclaw", true)

		ev := draftEvent(pubID, "Launch Meetup", start)
		desc := "An evening meetup"
		extID := "example-001"
		ev.Description = &desc
		ev.ExternalID = &extID

		created, err := repo.CreateEvent(ctx, ev)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created.ID == 0 {
			t.Fatalf("expected assigned id")
		}

		got, err := repo.GetEvent(ctx, created.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Title != "Launch Meetup" || got.Status != domain.StatusDraft {
			t.Fatalf("unexpected event: %+v", got)
		}
		if got.Description == nil || *got.Description != desc {
			t.Fatalf("expected description to round-trip, got %+v", got.Description)
		}
		if got.PublisherID == nil || *got.PublisherID != pubID {
			t.Fatalf("expected publisher id %d, got %+v", pubID, got.PublisherID)
		}
		if !got.StartDatetime.Equal(start) {
			t.Fatalf("expected start %v, got %v", start, got.StartDatetime)
		}

		_, err = repo.GetEvent(ctx, created.ID+999)
		if err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("CreateEvent rejects duplicate external id per publisher", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		pubID := testutil.InsertPublisher(t, ctx, pool, "EnumclawEvents", "key-1", "Enumclaw", true)
		otherID := testutil.InsertPublisher(t, ctx, pool, "Other", "key-2", "Enumclaw", true)

		extID := "example-001"
		ev := draftEvent(pubID, "First", start)
		ev.ExternalID = &extID
		if _, err := repo.CreateEvent(ctx, ev); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		dup := draftEvent(pubID, "Second", start)
		dup.ExternalID = &extID
		if _, err := repo.CreateEvent(ctx, dup); err != domain.ErrDuplicateExternalID {
			t.Fatalf("expected ErrDuplicateExternalID, got %v", err)
		}

		// Same external id under a different publisher is fine.
		other := draftEvent(otherID, "Third", start)
		other.ExternalID = &extID
		if _, err := repo.CreateEvent(ctx, other); err != nil {
			t.Fatalf("expected no error for other publisher, got %v", err)
		}

		// Nil external ids never collide.
		if _, err := repo.CreateEvent(ctx, draftEvent(pubID, "Fourth", start)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := repo.CreateEvent(ctx, draftEvent(pubID, "Fifth", start)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("UpdateEvent inside transaction with row lock", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		pubID := testutil.InsertPublisher(t, ctx, pool, "EnumclawEvents", "key-1", "Enumclaw", true)
		id := testutil.InsertEvent(t, ctx, pool, draftEvent(pubID, "Before", start))

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			ev, err := repo.GetEventForUpdate(txCtx, id)
			if err != nil {
				return err
			}
			ev.Title = "After"
			ev.Status = domain.StatusPublished
			ev.UpdatedAt = start
			return repo.UpdateEvent(txCtx, ev)
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		got, err := repo.GetEvent(ctx, id)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Title != "After" || got.Status != domain.StatusPublished {
			t.Fatalf("unexpected event after update: %+v", got)
		}
	})

	t.Run("UpdateEvent conflict rolls the transaction back", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		pubID := testutil.InsertPublisher(t, ctx, pool, "EnumclawEvents", "key-1", "Enumclaw", true)

		takenID := "taken"
		taken := draftEvent(pubID, "Holder", start)
		taken.ExternalID = &takenID
		testutil.InsertEvent(t, ctx, pool, taken)

		id := testutil.InsertEvent(t, ctx, pool, draftEvent(pubID, "Victim", start))

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			ev, err := repo.GetEventForUpdate(txCtx, id)
			if err != nil {
				return err
			}
			ev.Title = "Should Not Stick"
			ev.ExternalID = &takenID
			return repo.UpdateEvent(txCtx, ev)
		})
		if !errors.Is(err, domain.ErrDuplicateExternalID) {
			t.Fatalf("expected ErrDuplicateExternalID, got %v", err)
		}

		got, err := repo.GetEvent(ctx, id)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Title != "Victim" {
			t.Fatalf("expected rollback to keep title, got %q", got.Title)
		}
	})

	t.Run("DeleteEvent", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		pubID := testutil.InsertPublisher(t, ctx, pool, "EnumclawEvents", "key-1", "Enumclaw", true)
		id := testutil.InsertEvent(t, ctx, pool, draftEvent(pubID, "Doomed", start))

		if err := repo.DeleteEvent(ctx, id); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.DeleteEvent(ctx, id); err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("ListEvents filters and ordering", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		pubID := testutil.InsertPublisher(t, ctx, pool, "EnumclawEvents", "key-1", "Enumclaw,Buckley", true)

		later := draftEvent(pubID, "Later", start.Add(48*time.Hour))
		later.Status = domain.StatusPublished
		later.CreatedAt = start.Add(-1 * time.Hour)
		later.UpdatedAt = later.CreatedAt
		laterID := testutil.InsertEvent(t, ctx, pool, later)

		earlier := draftEvent(pubID, "Earlier", start)
		earlier.Status = domain.StatusPublished
		earlier.CreatedAt = start.Add(-2 * time.Hour)
		earlier.UpdatedAt = earlier.CreatedAt
		earlierID := testutil.InsertEvent(t, ctx, pool, earlier)

		buckley := draftEvent(pubID, "Buckley Draft", start.Add(24*time.Hour))
		buckley.City = "Buckley"
		testutil.InsertEvent(t, ctx, pool, buckley)

		// Soonest-first for the public surface.
		events, err := repo.ListEvents(ctx, domain.EventFilter{
			City:   "enumclaw",
			Status: domain.StatusPublished,
			Limit:  50,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].ID != earlierID || events[1].ID != laterID {
			t.Fatalf("unexpected order: %+v", events)
		}

		// Newest-created-first for the admin surface, no filters.
		events, err = repo.ListEvents(ctx, domain.EventFilter{Limit: 50, NewestFirst: true})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("expected 3 events, got %d", len(events))
		}
		if events[0].Title != "Buckley Draft" {
			t.Fatalf("expected the most recently created event first, got %q", events[0].Title)
		}

		// Limit and offset page through the soonest-first ordering.
		events, err = repo.ListEvents(ctx, domain.EventFilter{
			City:   "Enumclaw",
			Status: domain.StatusPublished,
			Limit:  1,
			Offset: 1,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 1 || events[0].ID != laterID {
			t.Fatalf("unexpected page: %+v", events)
		}
	})
}
