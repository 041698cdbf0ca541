package kbharvest

// itemKey is the exact-match uniqueness key applied at aggregation time.
type itemKey struct {
	sourceURL string
	title     string
}

// Duplicate records an item dropped by the aggregator's uniqueness
// rule. Rewrite reports whether the dropped item's content fingerprint
// differed from the kept item's, distinguishing a same-titled rewrite
// from an exact re-fetch.
type Duplicate struct {
	SourceURL string
	Title     string
	Rewrite   bool
}

// Aggregate merges per-source item groups into the final ordered
// collection. Groups are appended in the order given (configuration
// order), preserving discovery order within each group. Items sharing a
// (source_url, title) key collapse to the first occurrence; items with
// an empty source URL (PDF-derived) are never deduplicated. Dropped
// items are returned as Duplicate diagnostics.
func Aggregate(groups ...[]KnowledgeItem) ([]KnowledgeItem, []Duplicate) {
	kept := make(map[itemKey]string)
	var items []KnowledgeItem
	var dups []Duplicate
	for _, group := range groups {
		for _, item := range group {
			if item.SourceURL != "" {
				key := itemKey{sourceURL: item.SourceURL, title: item.Title}
				if fingerprint, ok := kept[key]; ok {
					dups = append(dups, Duplicate{
						SourceURL: item.SourceURL,
						Title:     item.Title,
						Rewrite:   fingerprint != item.Fingerprint(),
					})
					continue
				}
				kept[key] = item.Fingerprint()
			}
			items = append(items, item)
		}
	}
	return items, dups
}
