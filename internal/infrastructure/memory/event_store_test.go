package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/tracking-service/internal/domain"
)

const (
	catA = "507f1f77bcf86cd799439011"
	catB = "507f1f77bcf86cd799439012"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func put(t *testing.T, s *EventStore, id, actor, product string, action domain.Action, at time.Duration) {
	t.Helper()
	require.NoError(t, s.Append(context.Background(), &domain.Event{
		ID: id, ActorID: actor, ProductID: product, Action: action,
		Metadata: map[string]any{"k": "v"}, CreatedAt: t0.Add(at),
	}))
}

func TestEventStore_Find(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	put(t, s, "1", "u1", catA, domain.ActionView, 0)
	put(t, s, "2", "u1", catB, domain.ActionClick, time.Minute)
	put(t, s, "3", "u2", catA, domain.ActionView, 2*time.Minute)
	put(t, s, "4", "u1", catA, domain.ActionView, 2*time.Minute)

	t.Run("newest_first_with_insertion_tiebreak", func(t *testing.T) {
		got, err := s.Find(ctx, domain.EventFilter{}, 0)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, []string{"4", "3", "2", "1"}, []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
	})

	t.Run("conjunctive_filter_and_range", func(t *testing.T) {
		from, to := t0.Add(30*time.Second), t0.Add(2*time.Minute)
		got, err := s.Find(ctx, domain.EventFilter{ActorID: "u1", From: &from, To: &to}, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "4", got[0].ID)
		assert.Equal(t, "2", got[1].ID)
	})

	t.Run("returned_events_are_copies", func(t *testing.T) {
		got, err := s.Find(ctx, domain.EventFilter{ActorID: "u2"}, 1)
		require.NoError(t, err)
		got[0].Metadata["k"] = "changed"
		got[0].ActorID = "mallory"

		again, err := s.Find(ctx, domain.EventFilter{ActorID: "u2"}, 1)
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, "v", again[0].Metadata["k"])
	})
}

func TestEventStore_ProductAggregates(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	put(t, s, "1", "u1", catA, domain.ActionView, 0)
	put(t, s, "2", "u1", catA, domain.ActionView, time.Second)
	put(t, s, "3", "u2", catA, domain.ActionClick, 2*time.Second)
	put(t, s, "4", "u2", "blue jacket", domain.ActionView, 3*time.Second)
	put(t, s, "5", "u3", catB, domain.ActionView, 4*time.Second)

	t.Run("views_exclude_malformed_ids", func(t *testing.T) {
		got, err := s.ProductViews(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.ProductStat{ProductID: catA, Count: 2, DistinctActors: 1}, got[0])
		assert.Equal(t, catB, got[1].ProductID)
	})

	t.Run("interactions_exclude_actor", func(t *testing.T) {
		got, err := s.ProductInteractions(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.ProductStat{ProductID: catA, Count: 1, DistinctActors: 1}, got[0])
	})

	t.Run("distinct_viewed_keeps_free_text", func(t *testing.T) {
		got, err := s.DistinctProductsViewedBy(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{"blue jacket"}, got)
	})
}

func TestEventStore_ReassignSession(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	for _, sid := range []string{"s1", "s1", "s2"} {
		require.NoError(t, s.Append(ctx, &domain.Event{
			ID: sid, ActorID: domain.AnonymousActor, SessionID: sid, ProductID: catA,
			Action: domain.ActionView, CreatedAt: t0,
		}))
	}

	n, err := s.ReassignSession(ctx, "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.Find(ctx, domain.EventFilter{ActorID: "u1"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].SessionID)

	n, err = s.ReassignSession(ctx, "s1", "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEventStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Append(ctx, &domain.Event{ActorID: "u1", ProductID: catA, Action: domain.ActionView, CreatedAt: t0})
			_, _ = s.ProductViews(ctx)
		}()
	}
	wg.Wait()

	got, err := s.ProductViews(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(50), got[0].Count)
}
