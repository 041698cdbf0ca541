package mock

import (
	"kbharvest"
)

var _ kbharvest.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of kbharvest.DocumentWriter.
type DocumentWriter struct {
	WriteDocumentFn func(path string, doc *kbharvest.Document) error
}

func (w *DocumentWriter) WriteDocument(path string, doc *kbharvest.Document) error {
	return w.WriteDocumentFn(path, doc)
}
