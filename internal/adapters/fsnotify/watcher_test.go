package fsnotify

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Single-file watcher: vocabulary edits trigger one debounced reload
// =============================================================================

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func startWatcher(t *testing.T, path string) (*Watcher, chan string) {
	t.Helper()
	w, err := NewWatcher(nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(path, func(p string) { changed <- p }))

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return w, changed
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	dir := t.TempDir()
	vocab := filepath.Join(dir, "coins.txt")
	require.NoError(t, os.WriteFile(vocab, []byte("btc\n"), 0644))

	_, changed := startWatcher(t, vocab)

	require.NoError(t, os.WriteFile(vocab, []byte("btc\neth\n"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file change")
	assert.Equal(t, vocab, path)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	vocab := filepath.Join(dir, "coins.txt")
	require.NoError(t, os.WriteFile(vocab, []byte("btc\n"), 0644))

	_, changed := startWatcher(t, vocab)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "sibling file must not trigger")
}

func TestWatcher_DetectsReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	vocab := filepath.Join(dir, "coins.txt")
	require.NoError(t, os.WriteFile(vocab, []byte("btc\n"), 0644))

	_, changed := startWatcher(t, vocab)

	tmp := filepath.Join(dir, ".coins.txt.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("btc\nsol\n"), 0644))
	require.NoError(t, os.Rename(tmp, vocab))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback after atomic replace")
	assert.Equal(t, vocab, path)
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	vocab := filepath.Join(dir, "coins.txt")
	require.NoError(t, os.WriteFile(vocab, []byte("btc\n"), 0644))

	w, err := NewWatcher(nil)
	require.NoError(t, err)
	defer w.Stop()

	var calls atomic.Int32
	require.NoError(t, w.Watch(vocab, func(string) { calls.Add(1) }))
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(vocab, []byte("btc\neth\n"), 0644))
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst should collapse into one callback")
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w, err := NewWatcher(nil)
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "x"), func(string) {}))
}

func TestWatcher_NoCallbackAfterStop(t *testing.T) {
	dir := t.TempDir()
	vocab := filepath.Join(dir, "coins.txt")
	require.NoError(t, os.WriteFile(vocab, []byte("btc\n"), 0644))

	w, changed := startWatcher(t, vocab)
	require.NoError(t, w.Stop())

	require.NoError(t, os.WriteFile(vocab, []byte("eth\n"), 0644))
	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "no callbacks after Stop")
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := NewWatcher(nil)
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch(filepath.Join(t.TempDir(), "missing", "coins.txt"), func(string) {})
	assert.Error(t, err)
}
