package filing

// =============================================================================
// TOC LOCATOR - strategy orchestration and merge
// =============================================================================

// LocateTOC runs the locator strategies in fixed order and merges their
// entries. The structural scan is a true fallback: it runs only when neither
// the table nor the link strategy found anything, over its own bounded
// window. LocateTOC returns ErrNoTOC when no strategy finds anything; that
// is the per-document skip signal, not a failure.
func LocateTOC(doc *Document) ([]TocEntry, error) {
	tables := locateTableTOC(doc)
	links := locateLinkTOC(doc)
	merged := MergeTOC(tables, links)
	if len(merged) == 0 {
		merged = MergeTOC(locateFallbackTOC(doc))
	}
	if len(merged) == 0 {
		return nil, ErrNoTOC
	}
	return merged, nil
}

// MergeTOC combines entry lists from several strategies into one list with at
// most one entry per item id. The first discovery of an item wins its slot
// and its listing position; a later anchored sighting only upgrades an
// unanchored entry's anchor, never its title or order. Shared anchors from
// combined rows pass through untouched.
func MergeTOC(lists ...[]TocEntry) []TocEntry {
	var merged []TocEntry
	index := make(map[string]int)

	for _, list := range lists {
		for _, e := range list {
			at, exists := index[e.ItemID]
			if !exists {
				e.AppearanceOrder = len(merged)
				index[e.ItemID] = len(merged)
				merged = append(merged, e)
				continue
			}
			kept := &merged[at]
			if kept.Anchor == "" && e.Anchor != "" {
				kept.Anchor = e.Anchor
				kept.Source = e.Source
			}
			if kept.Anchor == "" && kept.Pos < 0 && e.Pos >= 0 {
				kept.Pos = e.Pos
			}
			if kept.Title == "" && e.Title != "" {
				kept.Title = e.Title
			}
		}
	}
	return merged
}
