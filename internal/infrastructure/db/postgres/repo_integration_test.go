//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baechuer/tracking-service/internal/domain"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17"),
		postgres.WithDatabase("tracking"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(filepath.Join("..", "..", "..", "..", "migrations", "0001_tracking_events.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.PingContext(ctx))
	return db
}

func TestRepo_Integration_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	repo := New(startPostgres(t))
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	const p1 = "507f1f77bcf86cd799439011"

	add := func(actor, session, product, action string, at time.Time) {
		e, err := domain.NewEvent(uuid.NewString(), domain.NewEventInput{
			ActorID: actor, SessionID: session, ProductID: product, CategoryID: "c1", Action: action,
		}, at)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, e))
	}

	for i := 0; i < 3; i++ {
		add(domain.AnonymousActor, "s1", p1, "view", base.Add(time.Duration(i)*time.Minute))
	}
	add("u1", "", p1, "view", base.Add(10*time.Minute))
	add("u1", "", "running shoes", "search", base.Add(11*time.Minute))

	t.Run("merge_is_idempotent", func(t *testing.T) {
		n, err := repo.ReassignSession(ctx, "s1", "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = repo.ReassignSession(ctx, "s1", "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		got, err := repo.Find(ctx, domain.EventFilter{ActorID: "u1"}, 50)
		require.NoError(t, err)
		assert.Len(t, got, 5)
		assert.Equal(t, domain.ActionSearch, got[0].Action)
		for _, e := range got {
			assert.Empty(t, e.SessionID)
		}
	})

	t.Run("popularity_ignores_free_text_products", func(t *testing.T) {
		got, err := repo.ProductViews(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(4), got[0].Count)
		assert.Equal(t, int64(1), got[0].DistinctActors)
	})

	t.Run("hourly_buckets", func(t *testing.T) {
		got, err := repo.ActivityCounts(ctx, domain.GranularityHour, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "09", got[0].Bucket)
	})

	t.Run("same_timestamp_newest_insert_first", func(t *testing.T) {
		at := base.Add(20 * time.Minute)
		add("u7", "", p1, "view", at)
		add("u7", "", p1, "purchase", at)

		got, err := repo.Find(ctx, domain.EventFilter{ActorID: "u7"}, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, domain.ActionPurchase, got[0].Action)
	})
}
