package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/exclusion"
	"github.com/localdex/engine/pkg/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DetectsCreatedFile(t *testing.T) {
	root := t.TempDir()

	w, err := watcher.New(exclusion.New())
	require.NoError(t, err)
	require.NoError(t, w.AddRoot(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.Start(ctx)
	defer w.Stop() //nolint:errcheck

	path := filepath.Join(root, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, core.EventFileChanged, ev.Type)
		assert.Equal(t, path, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for file creation event")
	}
}

func TestWatcher_IgnoresUnsupportedExtension(t *testing.T) {
	root := t.TempDir()

	w, err := watcher.New(exclusion.New())
	require.NoError(t, err)
	require.NoError(t, w.AddRoot(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.Start(ctx)
	defer w.Stop() //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.bin"), []byte("x"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for unsupported extension: %+v", ev)
	case <-time.After(800 * time.Millisecond):
	}
}

func TestWatcher_RespectsExclusion(t *testing.T) {
	root := t.TempDir()

	excl := exclusion.New()
	excl.Add(filepath.Join(root, "drafts"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "drafts"), 0o755))

	w, err := watcher.New(excl)
	require.NoError(t, err)
	require.NoError(t, w.AddRoot(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.Start(ctx)
	defer w.Stop() //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(root, "drafts", "secret.txt"), []byte("x"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for excluded directory: %+v", ev)
	case <-time.After(800 * time.Millisecond):
	}
}

func TestWatcher_StopClosesEventsChannel(t *testing.T) {
	root := t.TempDir()

	w, err := watcher.New(exclusion.New())
	require.NoError(t, err)
	require.NoError(t, w.AddRoot(root))

	ctx := context.Background()
	w.Start(ctx)

	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	assert.False(t, ok)
}
