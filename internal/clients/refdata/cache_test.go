package refdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynconv/analyzer/internal/database"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache, err := NewCache(db)
	require.NoError(t, err)
	return cache
}

func TestCache_StoreAndGet(t *testing.T) {
	cache := newTestCache(t)

	fields := Fields{FieldExpectedReportDate: "2026-09-12"}
	require.NoError(t, cache.Store("ACME US Equity", fields, time.Hour))

	got, ok := cache.Get("ACME US Equity")
	require.True(t, ok)
	assert.Equal(t, "2026-09-12", got.String(FieldExpectedReportDate))

	_, ok = cache.Get("MISSING Equity")
	assert.False(t, ok)
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Store("ACME US Equity", Fields{"f": "v"}, -time.Minute))

	_, ok := cache.Get("ACME US Equity")
	assert.False(t, ok)
}

func TestCache_Cleanup(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Store("FRESH", Fields{"f": "v"}, time.Hour))
	require.NoError(t, cache.Store("STALE", Fields{"f": "v"}, -time.Minute))

	removed, err := cache.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok := cache.Get("FRESH")
	assert.True(t, ok)
}
