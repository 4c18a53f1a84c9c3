package indexer

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/semdex/internal/frontend"
	"github.com/mvp-joe/semdex/internal/semdb"
	"github.com/mvp-joe/semdex/internal/symbols"
)

// Options is the read-only configuration the assembler consumes.
type Options struct {
	// SourceRoot is the directory document URIs are made relative to.
	SourceRoot string
	// IncludeText embeds the full source text in each document.
	IncludeText bool
	// Signatures and Annotations are optional collaborator hooks.
	Signatures  SignatureProvider
	Annotations AnnotationProvider
}

// FileIndexer builds one index document for one source file. Source text is
// loaded once and shared by hashing and text search; a load failure
// degrades every consumer to empty text rather than failing the file.
type FileIndexer struct {
	fe      frontend.Frontend
	globals *symbols.GlobalCache
	path    string
	opts    Options

	source    string
	sourceErr bool
}

// NewFileIndexer prepares an indexer for the file at path, which must be
// absolute. The global cache is shared across files; per-file state is
// created on Index.
func NewFileIndexer(fe frontend.Frontend, globals *symbols.GlobalCache, path string, opts Options) *FileIndexer {
	fi := &FileIndexer{fe: fe, globals: globals, path: path, opts: opts}
	src, err := fe.Source()
	if err != nil {
		fi.sourceErr = true
		src = ""
	}
	fi.source = src
	return fi
}

// Index runs the traversal once and assembles the document. Never fails:
// every fault shrinks the output instead.
func (fi *FileIndexer) Index() *semdb.Document {
	v := newVisitor(fi.fe, fi.globals, fi.source, fi.opts.Signatures, fi.opts.Annotations)
	v.scan(fi.fe.Root())

	doc := &semdb.Document{
		Schema:      semdb.Schema,
		Language:    semdb.LanguageJava,
		URI:         relativeURI(fi.path, fi.opts.SourceRoot),
		MD5:         fi.contentHash(),
		Occurrences: v.occurrences,
		Symbols:     v.infos,
	}
	if fi.opts.IncludeText {
		doc.Text = fi.source
	}
	return doc
}

// contentHash is the MD5 hex digest of the raw source text, or empty when
// the source could not be read.
func (fi *FileIndexer) contentHash() string {
	if fi.sourceErr {
		return ""
	}
	sum := md5.Sum([]byte(fi.source))
	return hex.EncodeToString(sum[:])
}

// relativeURI joins the path segments below root with forward slashes
// regardless of host path conventions.
func relativeURI(path, root string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}
