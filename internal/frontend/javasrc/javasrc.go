// Package javasrc is the production compiler frontend: it parses Java
// source with tree-sitter and exposes it through the frontend surface the
// indexer core consumes. Name resolution is best-effort and single-file;
// names that cannot be resolved yield nil symbols, which the core skips
// silently.
package javasrc

import (
	"errors"
	"os"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/mvp-joe/semdex/internal/frontend"
)

// Frontend holds one parsed compilation unit.
type Frontend struct {
	root    *frontend.Node
	lineMap *lineMap
	source  string
	readErr error
}

// Parse reads and parses the file at path. A read failure still yields a
// usable frontend whose Source reports the fault, so indexing degrades to
// an empty document instead of aborting the file.
func Parse(path string) *Frontend {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Frontend{lineMap: newLineMap(""), readErr: err}
	}
	return ParseBytes(data)
}

// ParseBytes parses Java source held in memory.
func ParseBytes(source []byte) *Frontend {
	fe := &Frontend{source: string(source), lineMap: newLineMap(string(source))}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(sitter.NewLanguage(java.Language()))

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fe
	}
	defer tree.Close()

	b := newBuilder(source)
	b.collectChildren(tree.RootNode(), nil)
	b.sealTypes()
	fe.root = b.build(tree.RootNode())
	return fe
}

// Root returns the file's tree, or nil when nothing parsed.
func (f *Frontend) Root() *frontend.Node { return f.root }

// LineMap returns the file's offset translation service.
func (f *Frontend) LineMap() frontend.LineMap { return f.lineMap }

// Source returns the raw source text, or the read error when the file
// could not be loaded.
func (f *Frontend) Source() (string, error) { return f.source, f.readErr }

// Doc returns the doc comment attached to the declaration's symbol.
func (f *Frontend) Doc(n *frontend.Node) (string, error) {
	if n == nil || n.Sym == nil {
		return "", errors.New("javasrc: no declaration")
	}
	return n.Sym.Doc, nil
}
