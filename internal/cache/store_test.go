package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "news:2025/01/02")
	require.NoError(t, err)
	assert.False(t, ok, "empty store should miss")

	stored := time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, "news:2025/01/02", Entry{Value: []byte(`{"kind":"data"}`), StoredAt: stored}))

	e, ok, err := s.Get(ctx, "news:2025/01/02")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"kind":"data"}`, string(e.Value))
	assert.True(t, e.StoredAt.Equal(stored), "stored_at %v != %v", e.StoredAt, stored)

	// Overwrite.
	later := stored.Add(time.Minute)
	require.NoError(t, s.Put(ctx, "news:2025/01/02", Entry{Value: []byte(`{"kind":"empty"}`), StoredAt: later}))
	e, _, err = s.Get(ctx, "news:2025/01/02")
	require.NoError(t, err)
	assert.Equal(t, `{"kind":"empty"}`, string(e.Value))
	assert.True(t, e.StoredAt.Equal(later))

	require.NoError(t, s.Delete(ctx, "news:2025/01/02"))
	_, ok, err = s.Get(ctx, "news:2025/01/02")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is not an error.
	require.NoError(t, s.Delete(ctx, "news:1999/01/01"))
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", Entry{Value: buf, StoredAt: time.Now()}))
	buf[0] = 'x'

	e, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(e.Value))
	assert.Equal(t, 1, s.Len())
}

func testSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, dbPath
}

func TestSQLiteStore(t *testing.T) {
	s, _ := testSQLite(t)
	storeContract(t, s)
}

func TestSQLiteReopenKeepsEntries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	s, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "news:2025/03/04", Entry{Value: []byte("v"), StoredAt: time.Now()}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(dbPath)
	require.NoError(t, err)
	defer s.Close()
	_, ok, err := s.Get(context.Background(), "news:2025/03/04")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLitePrune(t *testing.T) {
	s, _ := testSQLite(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.Put(ctx, "fresh", Entry{Value: []byte("a"), StoredAt: now.Add(-time.Minute)}))
	require.NoError(t, s.Put(ctx, "stale", Entry{Value: []byte("b"), StoredAt: now.Add(-48 * time.Hour)}))

	deleted, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, ok, _ := s.Get(ctx, "stale")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "fresh")
	assert.True(t, ok)

	deleted, err = s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestSQLiteClearAndStats(t *testing.T) {
	s, dbPath := testSQLite(t)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Put(ctx, k, Entry{Value: []byte(k), StoredAt: time.Now()}))
	}

	count, size, err := s.Stats(dbPath)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NotZero(t, size)

	n, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	count, _, err = s.Stats(dbPath)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// Redis tests need a live server: WEB3NEWS_TEST_REDIS=127.0.0.1:6379.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("WEB3NEWS_TEST_REDIS")
	if addr == "" {
		t.Skip("WEB3NEWS_TEST_REDIS not set")
	}
	rdb := NewRedisClient(RedisOptions{Addr: addr, DB: 15})
	s := NewRedisStore(rdb, time.Minute)
	s.prefix = "web3news-test:" + t.Name() + ":"
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Ping(context.Background()))

	storeContract(t, s)
}
