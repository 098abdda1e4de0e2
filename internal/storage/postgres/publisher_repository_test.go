package postgres

import (
	"context"
	"testing"

	"github.com/enumclawevents/opencircle-api/internal/domain"
	"github.com/enumclawevents/opencircle-api/internal/testutil"
)

func TestPublisherRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewPublisherRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreatePublisher assigns id and round-trips cities", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		created, err := repo.CreatePublisher(ctx, domain.Publisher{
			Name:          "EnumclawEvents",
			APIKey:        "key-1",
			AllowedCities: domain.NewCityList([]string{"Enumclaw", "Black Diamond"}),
			Active:        true,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created.ID == 0 {
			t.Fatalf("expected assigned id")
		}

		got, err := repo.GetPublisher(ctx, created.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Name != "EnumclawEvents" || !got.Active {
			t.Fatalf("unexpected publisher: %+v", got)
		}
		if len(got.AllowedCities) != 2 || got.AllowedCities[0] != "Enumclaw" || got.AllowedCities[1] != "Black Diamond" {
			t.Fatalf("unexpected cities: %+v", got.AllowedCities)
		}
	})

	t.Run("CreatePublisher rejects duplicate name", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		testutil.InsertPublisher(t, ctx, pool, "EnumclawEvents", "key-1", "Enumclaw", true)

		_, err := repo.CreatePublisher(ctx, domain.Publisher{
			Name:   "EnumclawEvents",
			APIKey: "key-2",
			Active: true,
		})
		if err != domain.ErrPublisherNameExists {
			t.Fatalf("expected ErrPublisherNameExists, got %v", err)
		}
	})

	t.Run("GetPublisherByKey", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		id := testutil.InsertPublisher(t, ctx, pool, "EnumclawEvents", "key-1", "Enumclaw", true)

		got, err := repo.GetPublisherByKey(ctx, "key-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID != id {
			t.Fatalf("expected id %d, got %d", id, got.ID)
		}

		_, err = repo.GetPublisherByKey(ctx, "missing")
		if err != domain.ErrPublisherNotFound {
			t.Fatalf("expected ErrPublisherNotFound, got %v", err)
		}
	})

	t.Run("ListPublishers orders by id", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		first := testutil.InsertPublisher(t, ctx, pool, "First", "key-1", "Enumclaw", true)
		second := testutil.InsertPublisher(t, ctx, pool, "Second", "key-2", "Buckley", false)

		pubs, err := repo.ListPublishers(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(pubs) != 2 {
			t.Fatalf("expected 2 publishers, got %d", len(pubs))
		}
		if pubs[0].ID != first || pubs[1].ID != second {
			t.Fatalf("unexpected order: %+v", pubs)
		}
		if pubs[0].APIKey != "key-1" {
			t.Fatalf("expected api key to round-trip, got %q", pubs[0].APIKey)
		}
	})

	t.Run("SetPublisherActive", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		id := testutil.InsertPublisher(t, ctx, pool, "EnumclawEvents", "key-1", "Enumclaw", true)

		got, err := repo.SetPublisherActive(ctx, id, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Active {
			t.Fatalf("expected publisher to be inactive")
		}

		_, err = repo.SetPublisherActive(ctx, id+999, false)
		if err != domain.ErrPublisherNotFound {
			t.Fatalf("expected ErrPublisherNotFound, got %v", err)
		}
	})

	t.Run("empty city list round-trips empty", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		created, err := repo.CreatePublisher(ctx, domain.Publisher{
			Name:          "NoCities",
			APIKey:        "key-1",
			AllowedCities: domain.CityList{},
			Active:        true,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.GetPublisher(ctx, created.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got.AllowedCities) != 0 {
			t.Fatalf("expected no cities, got %+v", got.AllowedCities)
		}
	})
}
