// Package indexer produces one index document per Java source file:
// symbol occurrences with exact ranges plus symbol metadata. The core
// (visitor, range resolver, document assembly) works against the frontend
// surface; this file is the multi-file driver around it.
package indexer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/semdex/internal/frontend/javasrc"
	"github.com/mvp-joe/semdex/internal/semdb"
	"github.com/mvp-joe/semdex/internal/storage"
	"github.com/mvp-joe/semdex/internal/symbols"
)

// ProgressReporter receives driver progress callbacks. Implementations
// must tolerate concurrent OnFileIndexed calls.
type ProgressReporter interface {
	OnDiscoveryComplete(totalFiles int)
	OnFileIndexed(path string)
	OnComplete(result *RunResult)
}

// NopProgress discards all progress events.
type NopProgress struct{}

func (NopProgress) OnDiscoveryComplete(int) {}
func (NopProgress) OnFileIndexed(string) {}
func (NopProgress) OnComplete(*RunResult) {}

// RunOptions configures one indexing run.
type RunOptions struct {
	RootDir     string
	OutputDir   string
	DBPath      string // empty disables SQLite persistence
	IncludeText bool
	Workers     int
	Include     []string
	Ignore      []string
	Progress    ProgressReporter
}

// RunResult summarizes a finished run.
type RunResult struct {
	RunID       string
	Files       int
	Occurrences int
	Symbols     int
	Duration    time.Duration
}

// Indexer drives indexing of a source tree. The global symbol cache is
// shared by all files of the run; per-file state lives and dies inside
// IndexFile.
type Indexer struct {
	opts      RunOptions
	discovery *FileDiscovery
	writer    *DocumentWriter
	store     *storage.Store
	globals   *symbols.GlobalCache
	runID     string

	mu          sync.Mutex
	files       int
	occurrences int
	symbols     int
}

// New prepares an indexer: compiles discovery patterns, creates the output
// directory, and opens the database when configured.
func New(opts RunOptions) (*Indexer, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if len(opts.Include) == 0 {
		opts.Include = []string{"**/*.java"}
	}
	if opts.Progress == nil {
		opts.Progress = NopProgress{}
	}

	discovery, err := NewFileDiscovery(opts.RootDir, opts.Include, opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to compile discovery patterns: %w", err)
	}
	writer, err := NewDocumentWriter(opts.OutputDir)
	if err != nil {
		return nil, err
	}

	idx := &Indexer{
		opts:      opts,
		discovery: discovery,
		writer:    writer,
		globals:   symbols.NewGlobalCache(),
		runID:     uuid.NewString(),
	}
	if opts.DBPath != "" {
		store, err := storage.Open(opts.DBPath)
		if err != nil {
			return nil, err
		}
		idx.store = store
	}
	return idx, nil
}

// Close releases the writer's temp area and the database handle.
func (idx *Indexer) Close() error {
	if idx.store != nil {
		if err := idx.store.Close(); err != nil {
			return err
		}
	}
	return idx.writer.Close()
}

// Run indexes every discovered file with a worker pool and returns the run
// summary. Per-file faults never fail the run; a file always yields a
// document, possibly with fewer facts.
func (idx *Indexer) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	files, err := idx.discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	idx.opts.Progress.OnDiscoveryComplete(len(files))

	if idx.store != nil {
		if err := idx.store.BeginRun(idx.runID, idx.opts.RootDir, start); err != nil {
			return nil, err
		}
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < idx.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				idx.IndexFile(path)
				idx.opts.Progress.OnFileIndexed(path)
			}
		}()
	}

	for _, path := range files {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	idx.mu.Lock()
	result := &RunResult{
		RunID:       idx.runID,
		Files:       idx.files,
		Occurrences: idx.occurrences,
		Symbols:     idx.symbols,
		Duration:    time.Since(start),
	}
	idx.mu.Unlock()

	if idx.store != nil {
		if err := idx.store.FinishRun(idx.runID, result.Files); err != nil {
			return nil, err
		}
	}

	idx.opts.Progress.OnComplete(result)
	return result, nil
}

// IndexFile indexes a single source file and persists the document. Safe
// for concurrent use; the global cache handles its own locking.
func (idx *Indexer) IndexFile(path string) *semdb.Document {
	fe := javasrc.Parse(path)
	fi := NewFileIndexer(fe, idx.globals, path, Options{
		SourceRoot:  idx.opts.RootDir,
		IncludeText: idx.opts.IncludeText,
	})
	doc := fi.Index()

	if err := idx.writer.Write(doc); err != nil {
		log.Printf("semdex: failed to write document for %s: %v", path, err)
	}
	if idx.store != nil {
		if err := idx.store.SaveDocument(doc, idx.runID); err != nil {
			log.Printf("semdex: failed to store document for %s: %v", path, err)
		}
	}

	idx.mu.Lock()
	idx.files++
	idx.occurrences += len(doc.Occurrences)
	idx.symbols += len(doc.Symbols)
	idx.mu.Unlock()
	return doc
}

// Matches reports whether the indexer would pick up the given path.
func (idx *Indexer) Matches(path string) bool {
	return idx.discovery.Matches(path)
}
