package searchlog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return db
}

func TestAppendRecent(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	entries := []Entry{
		{Time: base, Origin: "marketplace", Ceiling: 1100, ResultCount: 2, Duration: 8 * time.Second},
		{Time: base.Add(time.Minute), Origin: "pricebot", Ceiling: 500, ResultCount: 0, Duration: 5 * time.Second},
	}
	for _, e := range entries {
		require.NoError(t, store.Append(ctx, e))
	}

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// newest first
	require.Equal(t, "pricebot", got[0].Origin)
	require.Equal(t, 500, got[0].Ceiling)
	require.Equal(t, "marketplace", got[1].Origin)
	require.Equal(t, 2, got[1].ResultCount)
	require.Equal(t, 8*time.Second, got[1].Duration)
}

func TestNilStoreIsNoop(t *testing.T) {
	var store Store
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, Entry{Origin: "marketplace"}))
	got, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	require.Empty(t, got)
}
