package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds indexable source files under a root using glob
// include patterns and ignore rules.
type FileDiscovery struct {
	rootDir        string
	patterns       []compiledPattern
	ignorePatterns []compiledPattern
}

// NewFileDiscovery compiles the include and ignore patterns for rootDir.
func NewFileDiscovery(rootDir string, patterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{rootDir: rootDir}

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		fd.patterns = append(fd.patterns, compiledPattern{pattern: pattern, glob: g})
	}
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		fd.ignorePatterns = append(fd.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return fd, nil
}

// DiscoverFiles walks the root and returns the matching file paths.
func (fd *FileDiscovery) DiscoverFiles() ([]string, error) {
	files := []string{}

	err := filepath.Walk(fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if fd.shouldIgnore(relPath) {
			return nil
		}
		if fd.matchesAnyPattern(relPath, fd.patterns) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// Matches reports whether a single path, relative to the root, is
// indexable. Used by the watcher for change events.
func (fd *FileDiscovery) Matches(path string) bool {
	relPath, err := filepath.Rel(fd.rootDir, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	return !fd.shouldIgnore(relPath) && fd.matchesAnyPattern(relPath, fd.patterns)
}

// shouldIgnore checks ignore patterns. The tool's own output directory is
// always ignored.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if strings.HasPrefix(relPath, ".semdex/") || relPath == ".semdex" {
		return true
	}
	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// A bare directory name in the ignore list should also match as if it
	// were written with a /** suffix.
	for _, p := range fd.ignorePatterns {
		dir := strings.TrimSuffix(p.pattern, "/**")
		if dir != p.pattern && (relPath == dir || strings.HasPrefix(relPath, dir+"/")) {
			return true
		}
	}
	return false
}

func (fd *FileDiscovery) matchesAnyPattern(relPath string, patterns []compiledPattern) bool {
	for _, p := range patterns {
		if p.glob.Match(relPath) {
			return true
		}
	}
	return false
}
