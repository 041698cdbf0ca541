// Package fs persists the aggregated knowledge base document and lists
// PDF inputs on the local filesystem.
package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kbharvest"
)

// Ensure Writer implements kbharvest.DocumentWriter at compile time.
var _ kbharvest.DocumentWriter = (*Writer)(nil)

// Writer writes the output document as JSON.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteDocument writes doc to path atomically: the document is staged in
// a temp file in the same directory and renamed into place, so a crash
// never leaves a half-written output.
func (w *Writer) WriteDocument(path string, doc *kbharvest.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return kbharvest.Errorf(kbharvest.EINTERNAL, "encoding document: %v", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".kbharvest-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

// ListPDFs returns the *.pdf files directly under dir, sorted by name
// for deterministic processing order. A missing directory yields an
// empty list, not an error.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
