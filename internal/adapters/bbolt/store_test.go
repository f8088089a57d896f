package bbolt

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/goodadvice/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Report store: save, lookup by id, range reads by creation time
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func makeReport(title string, at time.Time) *ports.Report {
	return &ports.Report{
		ResourceID: "res-" + title,
		Title:      title,
		Origin:     "https://newsdata.io",
		Text:       "Traders rotate from (ETH) into btc.",
		Link:       "https://example.com/" + title,
		CreatedAt:  at,
		Coins:      []string{"eth", "btc"},
		Keywords:   []string{"markets"},
		Sentiment:  ports.Sentiment{Negative: 0.1, Neutral: 0.3, Positive: 0.6},
		Advice:     `{"negative":0.1,"neutral":0.3,"positive":0.6}`,
	}
}

func TestStore_SaveRead_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 3, 1, 9, 30, 0, 123_456_789, time.UTC)
	orig := makeReport("a1", at)

	id, err := store.Save(ctx, orig)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, orig.ID)

	got, err := store.ReadByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, orig.Title, got.Title)
	assert.Equal(t, orig.Coins, got.Coins)
	assert.Equal(t, orig.Sentiment, got.Sentiment)
	assert.Equal(t, orig.Advice, got.Advice)
	// Stored at millisecond precision.
	assert.True(t, at.Truncate(time.Millisecond).Equal(got.CreatedAt))
}

func TestStore_Save_StampsCreatedAt(t *testing.T) {
	store, _ := newTestStore(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	r := makeReport("x", time.Time{})
	_, err := store.Save(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, fixed.Equal(r.CreatedAt))
}

func TestStore_ReadByID_NotFound(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.ReadByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestStore_ReadFromTime(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// Insert out of order.
	for _, h := range []int{5, 1, 3, 2, 4} {
		_, err := store.Save(ctx, makeReport(fmt.Sprintf("h%d", h), base.Add(time.Duration(h)*time.Hour)))
		require.NoError(t, err)
	}

	got, err := store.ReadFromTime(ctx, base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "h3", got[0].Title)
	assert.Equal(t, "h4", got[1].Title)
	assert.Equal(t, "h5", got[2].Title)

	none, err := store.ReadFromTime(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := store.ReadFromTime(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestStore_Save_ReplaceMovesTimeEntry(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	r := makeReport("moved", base)
	r.ID = "fixed-id"
	_, err := store.Save(ctx, r)
	require.NoError(t, err)

	r2 := makeReport("moved", base.Add(48*time.Hour))
	r2.ID = "fixed-id"
	_, err = store.Save(ctx, r2)
	require.NoError(t, err)

	got, err := store.ReadFromTime(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, base.Add(48*time.Hour).Equal(got[0].CreatedAt))
}

func TestStore_CanceledContext(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, makeReport("x", time.Now()))
	assert.True(t, errors.Is(err, context.Canceled))
	_, err = store.ReadFromTime(ctx, time.Time{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStore_StateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restart.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	id, err := store.Save(ctx, makeReport("persist", time.Now()))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.ReadByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "persist", got.Title)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Save(ctx, makeReport(fmt.Sprintf("c%d", i), time.Now()))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := store.ReadFromTime(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestTimeKey_Order(t *testing.T) {
	a := timeKey(time.UnixMilli(1000), "zzz")
	b := timeKey(time.UnixMilli(1001), "aaa")
	assert.Less(t, string(a), string(b))

	at, id, err := splitTimeKey(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), at.UnixMilli())
	assert.Equal(t, "aaa", id)

	_, _, err = splitTimeKey([]byte{1, 2})
	assert.Error(t, err)
}

// =============================================================================
// Lock contention tests: verify the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	// When another process holds the bbolt exclusive lock, a second open
	// should time out in ~1 second, not hang forever.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2)
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond, "should wait ~1s for the configured timeout")
}

func TestStore_OpenAfterClose_Succeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "released.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	_, err = store1.Save(context.Background(), makeReport("x", time.Now()))
	require.NoError(t, err)
	store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.NoError(t, err, "open after close should succeed")
	defer store2.Close()
	assert.Less(t, elapsed, 500*time.Millisecond, "should open instantly after lock released")
}
