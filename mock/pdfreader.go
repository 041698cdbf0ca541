package mock

import (
	"kbharvest"
)

var _ kbharvest.PDFReader = (*PDFReader)(nil)

// PDFReader is a mock implementation of kbharvest.PDFReader.
type PDFReader struct {
	ReadPagesFn func(path string) ([]kbharvest.PDFPage, error)
}

func (r *PDFReader) ReadPages(path string) ([]kbharvest.PDFPage, error) {
	return r.ReadPagesFn(path)
}
