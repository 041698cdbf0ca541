package kbharvest

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// KnowledgeItem is the normalized output record shared by web-derived
// and PDF-derived content.
type KnowledgeItem struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	SourceURL   string `json:"source_url"`
	Author      string `json:"author"`
	UserID      string `json:"user_id"`
}

// Validate returns EINVALID if required fields are missing.
func (i *KnowledgeItem) Validate() error {
	if i.Title == "" {
		return Errorf(EINVALID, "item title required")
	}
	if i.Content == "" {
		return Errorf(EINVALID, "item content required")
	}
	if i.ContentType == "" {
		return Errorf(EINVALID, "item content_type required")
	}
	return nil
}

// Fingerprint returns a stable content hash, used in diagnostics to
// tell exact duplicates from same-titled rewrites.
func (i *KnowledgeItem) Fingerprint() string {
	return fmt.Sprintf("%x", xxhash.Sum64String(i.Content))
}

// Item converts an extracted item to its output form.
func (e *ExtractedItem) Item() KnowledgeItem {
	return KnowledgeItem{
		Title:       e.Title,
		Content:     e.Content,
		ContentType: e.ContentType,
		SourceURL:   e.SourceURL,
		Author:      e.Author,
	}
}

// Document is the output artifact consumed by downstream storage.
type Document struct {
	TeamID string          `json:"team_id"`
	Items  []KnowledgeItem `json:"items"`
}

// DocumentWriter persists the aggregated document.
type DocumentWriter interface {
	WriteDocument(path string, doc *Document) error
}
