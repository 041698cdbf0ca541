package mock

import (
	"kbharvest"
)

var _ kbharvest.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of kbharvest.Extractor.
type Extractor struct {
	ExtractFn func(html string, src *kbharvest.Source) (*kbharvest.ExtractedItem, error)
}

func (e *Extractor) Extract(html string, src *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
	return e.ExtractFn(html, src)
}

var _ kbharvest.Converter = (*Converter)(nil)

// Converter is a mock implementation of kbharvest.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
