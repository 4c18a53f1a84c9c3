package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the watcher:
// - A written Java file is reindexed after the debounce window
// - Non-matching files are ignored
// - Stop is idempotent and shuts down the event loop
// - Stopping inside the debounce window cancels the pending reindex;
//   no indexing runs after Stop returns

func TestWatcher_ReindexOnWrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0755))

	idx, err := New(RunOptions{
		RootDir:   root,
		OutputDir: filepath.Join(root, ".semdex", "index"),
	})
	require.NoError(t, err)
	defer idx.Close()

	w, err := NewWatcher(idx, root)
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond
	w.Start(context.Background())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(src, "Live.java"),
		[]byte("class Live { }\n"), 0644))

	// Test: the document shows up once the debounce window has passed
	docPath := filepath.Join(root, ".semdex", "index", "src", "Live.java.semanticdb.json")
	require.Eventually(t, func() bool {
		_, err := os.Stat(docPath)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	// Test: a non-matching file is never indexed
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	_, err = os.Stat(filepath.Join(root, ".semdex", "index", "src", "notes.txt.semanticdb.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	idx, err := New(RunOptions{
		RootDir:   root,
		OutputDir: filepath.Join(root, ".semdex", "index"),
	})
	require.NoError(t, err)
	defer idx.Close()

	w, err := NewWatcher(idx, root)
	require.NoError(t, err)
	w.Start(context.Background())

	w.Stop()
	w.Stop()
}

func TestWatcher_StopCancelsPendingReindex(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	idx, err := New(RunOptions{
		RootDir:   root,
		OutputDir: filepath.Join(root, ".semdex", "index"),
		Include:   []string{"*.java"},
	})
	require.NoError(t, err)
	defer idx.Close()

	w, err := NewWatcher(idx, root)
	require.NoError(t, err)
	w.debounceTime = 400 * time.Millisecond
	w.Start(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(root, "Late.java"),
		[]byte("class Late { }\n"), 0644))

	// Give the event time to reach the loop, then stop before the
	// debounce window closes.
	time.Sleep(100 * time.Millisecond)
	w.Stop()

	// Test: the debounced reindex never runs once Stop has returned
	time.Sleep(600 * time.Millisecond)
	_, err = os.Stat(filepath.Join(root, ".semdex", "index", "Late.java.semanticdb.json"))
	assert.True(t, os.IsNotExist(err))
}
