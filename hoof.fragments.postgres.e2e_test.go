//go:build integration

package hoof

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer creates an ephemeral PostgreSQL container for testing.
func setupPostgresContainer(t *testing.T) (*PostgresFragmentStore, string, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("hoof_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	store, err := NewPostgresFragmentStore(PostgresConfig{
		ConnectionString: connStr,
		AutoMigrate:      true,
		QueryTimeout:     30 * time.Second,
	})
	require.NoError(t, err, "failed to create postgres fragment store")

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	}

	return store, connStr, cleanup
}

func TestPostgres_E2E_Fragments(t *testing.T) {
	store, _, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("schema", func(t *testing.T) {
		version, err := store.CurrentSchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, version)
		require.NoError(t, store.RunMigrations(ctx), "migrations are idempotent")
	})

	t.Run("missing entry", func(t *testing.T) {
		_, ok, err := store.Info(ctx, "hoof/cache/none.mix")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = store.Read(ctx, "hoof/cache/none.mix")
		assert.True(t, IsMissingResource(err))
	})

	t.Run("write and read", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "hoof/cache/a.mix", []byte("<p>a</p>")))

		info, ok, err := store.Info(ctx, "hoof/cache/a.mix")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(8), info.Size)
		assert.WithinDuration(t, time.Now(), info.CreatedAt, time.Minute)

		data, err := store.Read(ctx, "hoof/cache/a.mix")
		require.NoError(t, err)
		assert.Equal(t, "<p>a</p>", string(data))
	})

	t.Run("last write wins", func(t *testing.T) {
		first, _, err := store.Info(ctx, "hoof/cache/a.mix")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, store.Write(ctx, "hoof/cache/a.mix", []byte("<p>b</p>")))

		second, _, err := store.Info(ctx, "hoof/cache/a.mix")
		require.NoError(t, err)
		assert.True(t, second.CreatedAt.After(first.CreatedAt))

		data, err := store.Read(ctx, "hoof/cache/a.mix")
		require.NoError(t, err)
		assert.Equal(t, "<p>b</p>", string(data))
	})
}

func TestPostgres_E2E_ConcurrentWrites(t *testing.T) {
	store, _, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := store.Write(ctx, "hoof/cache/shared.mix", []byte(fmt.Sprintf("<i>%d</i>", n))); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	data, err := store.Read(ctx, "hoof/cache/shared.mix")
	require.NoError(t, err)
	assert.Regexp(t, `^<i>\d+</i>$`, string(data))
}

func TestPostgres_E2E_EngineCache(t *testing.T) {
	_, connStr, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store, err := OpenFragmentStore(FragmentStoreDriverPostgres, connStr)
	require.NoError(t, err)

	engine, err := New(
		WithReader(NewMemoryReader(map[string]string{
			"page.mix": `<div><cached ttl="3600">{{ n }}</cached></div>`,
		})),
		WithFragmentStore(store),
	)
	require.NoError(t, err)
	defer engine.Close()
	ctx := context.Background()
	req := &Request{Path: "/p"}

	out, err := engine.Render(ctx, "page", map[string]any{"n": 1}, req)
	require.NoError(t, err)
	assert.Equal(t, "<div>1</div>", out)

	out, err = engine.Render(ctx, "page", map[string]any{"n": 2}, req)
	require.NoError(t, err)
	assert.Equal(t, "<div>1</div>", out)

	out, err = engine.RenderCached(ctx, "page", map[string]any{"n": 3}, req, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "<div>1</div>", out, "the page embeds the cached fragment")
}
