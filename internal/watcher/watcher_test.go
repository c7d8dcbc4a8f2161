package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/delaneyj/linkparty/internal/watcher"
)

func start(t *testing.T, paths ...string) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Paths:       paths,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(model, []byte("a: 1"), 0o644))

	onChange := start(t, model)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(model, []byte(fmt.Sprintf("a: %d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte("<p></p>"), 0o644))

	onChange := start(t, page)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-onChange:
		t.Fatal("unexpected notification for unwatched file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MultipleDirectories(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	page := filepath.Join(a, "page.html")
	sheet := filepath.Join(b, "app.css")
	require.NoError(t, os.WriteFile(page, []byte("<p></p>"), 0o644))
	require.NoError(t, os.WriteFile(sheet, []byte("p {}"), 0o644))

	onChange := start(t, page, sheet, "")

	require.NoError(t, os.WriteFile(sheet, []byte("p { color: red; }"), 0o644))
	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for second directory")
	}
}
