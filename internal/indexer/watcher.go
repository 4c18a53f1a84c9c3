package indexer

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-indexes Java files as they change on disk. Events are
// debounced so a burst of writes to the same file triggers one reindex.
type Watcher struct {
	indexer      *Indexer
	rootDir      string
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewWatcher creates a file watcher over the indexer's root directory.
func NewWatcher(idx *Indexer, rootDir string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		indexer:      idx,
		rootDir:      rootDir,
		watcher:      watcher,
		debounceTime: 500 * time.Millisecond,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(rootDir); err != nil {
		watcher.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// watch is the event loop with debouncing. Reindexing happens on this
// goroutine, so Stop waiting on doneCh sees no work in flight.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	pending := make(map[string]bool)

	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case <-debounceCh:
			debounceCh = nil
			for f := range pending {
				w.indexer.IndexFile(f)
				log.Printf("semdex: reindexed %s", f)
			}
			pending = make(map[string]bool)

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories need to be registered for events.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("semdex: failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.indexer.Matches(event.Name) {
				continue
			}

			pending[event.Name] = true

			if debounceTimer == nil {
				debounceTimer = time.NewTimer(w.debounceTime)
			} else {
				if !debounceTimer.Stop() && debounceCh != nil {
					<-debounceTimer.C
				}
				debounceTimer.Reset(w.debounceTime)
			}
			debounceCh = debounceTimer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("semdex: watcher error: %v", err)
		}
	}
}

// addDirectoriesRecursively adds rootDir and every subdirectory to the
// watcher, skipping hidden directories and the output area.
func (w *Watcher) addDirectoriesRecursively(rootDir string) error {
	return filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if path != rootDir && (base == ".semdex" || base[0] == '.') {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
