package watch

// fsnotify spawns platform-specific goroutines that goleak cannot reliably
// track, so this package (unlike internal/mcp) verifies behavior directly
// rather than under goleak.VerifyTestMain.

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSWatcherDeliversCreateEvent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFSWatcher(dir, nil, 50)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	path := filepath.Join(dir, "new_file.go")
	require.NoError(t, os.WriteFile(path, []byte("package watch\n"), 0644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, path, ev.Path)
		assert.Contains(t, []EventType{EventCreate, EventModify}, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for create event")
	}
}

func TestFSWatcherIgnoresNonSourceFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFSWatcher(dir, nil, 50)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	select {
	case ev := <-w.Events():
		t.Fatalf("expected no event for a non-source file, got %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFSWatcherSkipsIgnoredDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "node_modules"), 0755))

	w, err := NewFSWatcher(dir, []string{"node_modules"}, 50)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "lib.go"), []byte("package x\n"), 0644))

	select {
	case ev := <-w.Events():
		t.Fatalf("expected node_modules to be unwatched, got %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFSWatcherStopClosesEventsChannel(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFSWatcher(dir, nil, 50)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	w.Stop()

	_, ok := <-w.Events()
	assert.False(t, ok, "Events channel should be closed after Stop")
}
