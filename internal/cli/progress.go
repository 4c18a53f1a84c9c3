package cli

import (
	"log"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/semdex/internal/indexer"
)

// ProgressReporter renders indexing progress as a progress bar.
type ProgressReporter struct {
	quiet bool

	mu      sync.Mutex
	fileBar *progressbar.ProgressBar
}

// NewProgressReporter creates a progress reporter. With quiet set, all
// output is suppressed.
func NewProgressReporter(quiet bool) *ProgressReporter {
	return &ProgressReporter{quiet: quiet}
}

func (p *ProgressReporter) OnDiscoveryComplete(totalFiles int) {
	if p.quiet {
		return
	}
	log.Printf("Indexing %d Java files", totalFiles)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Indexing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
	)
}

func (p *ProgressReporter) OnFileIndexed(path string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fileBar != nil {
		p.fileBar.Add(1)
	}
}

func (p *ProgressReporter) OnComplete(result *indexer.RunResult) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fileBar != nil {
		p.fileBar.Finish()
	}
}
