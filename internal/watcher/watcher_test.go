package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startWatcher watches dir and runs the watcher until the test ends.
func startWatcher(t *testing.T, dir string, opts Options) *Watcher {
	t.Helper()

	w, err := New(nil, opts)
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		require.NoError(t, w.Stop())
	})
	return w
}

func nextEvent(t *testing.T, w *Watcher, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(timeout):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func assertNoEvent(t *testing.T, w *Watcher, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(wait):
	}
}

func TestNew_StopTwice(t *testing.T) {
	w, err := New(nil, Options{})
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())

	_, ok := <-w.Events()
	assert.False(t, ok, "events channel closes on stop")
}

func TestWatcher_WatchMissingPath(t *testing.T) {
	w, err := New(nil, Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	err = w.Watch(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWatcher_FileCreation(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})

	path := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: Ada\n"), 0o644))

	ev := nextEvent(t, w, time.Second)
	assert.Equal(t, EventAdded, ev.Type)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, int64(12), ev.Size)
}

func TestWatcher_ModifyKnownFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	ev := nextEvent(t, w, time.Second)
	assert.Equal(t, EventModified, ev.Type)
	assert.Equal(t, int64(3), ev.Size)
}

func TestWatcher_FileDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	w := startWatcher(t, dir, Options{})

	require.NoError(t, os.Remove(path))

	ev := nextEvent(t, w, time.Second)
	assert.Equal(t, EventRemoved, ev.Type)
	assert.Equal(t, path, ev.Path)
}

func TestWatcher_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{
		SettleDelay: 30 * time.Millisecond,
		Extensions:  []string{".yaml", ".json"},
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	json := filepath.Join(dir, "roster.json")
	require.NoError(t, os.WriteFile(json, []byte("[]"), 0o644))

	ev := nextEvent(t, w, time.Second)
	assert.Equal(t, json, ev.Path)
	assertNoEvent(t, w, 150*time.Millisecond)
}

func TestWatcher_IgnoreHidden(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{IgnoreHidden: true, SettleDelay: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("secret"), 0o644))
	normal := filepath.Join(dir, "normal.yaml")
	require.NoError(t, os.WriteFile(normal, []byte("content"), 0o644))

	ev := nextEvent(t, w, time.Second)
	assert.Equal(t, normal, ev.Path)
	assertNoEvent(t, w, 200*time.Millisecond)
}

func TestWatcher_IgnoredSubdirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "processed"), 0o755))

	w := startWatcher(t, dir, Options{
		IgnorePatterns: []string{"processed"},
		SettleDelay:    30 * time.Millisecond,
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed", "old.yaml"), []byte("x"), 0o644))
	assertNoEvent(t, w, 200*time.Millisecond)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 30 * time.Millisecond})

	sub := filepath.Join(dir, "batch")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher a moment to add the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	ev := nextEvent(t, w, time.Second)
	assert.Equal(t, path, ev.Path)
}
