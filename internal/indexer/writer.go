package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/semdex/internal/semdb"
)

// DocumentWriter writes index documents as JSON files under an output
// directory, mirroring the source layout. Writes go through a temp file and
// rename so readers never observe a half-written document.
type DocumentWriter struct {
	outputDir string
	tempDir   string
}

// NewDocumentWriter creates the output directory and a clean temp area.
func NewDocumentWriter(outputDir string) (*DocumentWriter, error) {
	tempDir := filepath.Join(outputDir, ".tmp")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Drop stale temp files from an interrupted run.
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &DocumentWriter{outputDir: outputDir, tempDir: tempDir}, nil
}

// Write stores one document at <outputDir>/<uri>.semanticdb.json.
func (w *DocumentWriter) Write(doc *semdb.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", doc.URI, err)
	}

	name := filepath.FromSlash(doc.URI) + ".semanticdb.json"
	tempPath := filepath.Join(w.tempDir, flatten(name))
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	finalPath := filepath.Join(w.outputDir, name)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Read loads a previously written document by URI. A missing document is
// not an error; it returns nil.
func (w *DocumentWriter) Read(uri string) (*semdb.Document, error) {
	path := filepath.Join(w.outputDir, filepath.FromSlash(uri)+".semanticdb.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	var doc semdb.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}

// Close removes the temp area.
func (w *DocumentWriter) Close() error {
	return os.RemoveAll(w.tempDir)
}

// flatten turns a relative document path into a single temp file name.
func flatten(name string) string {
	out := []byte(name)
	for i, c := range out {
		if c == '/' || c == '\\' || c == ':' {
			out[i] = '_'
		}
	}
	return string(out)
}
