package filing

import "strings"

// =============================================================================
// TOC LOCATOR - anchor link strategy
// =============================================================================

// linkScanLimit bounds how deep into the document the link strategy looks for
// a cluster of item links. A real table of contents sits near the front; item
// cross references deep in the body must not be mistaken for one.
const linkScanLimit = 400

// minLinkEntries is the smallest link cluster accepted as a table of
// contents.
const minLinkEntries = 2

// locateLinkTOC reads non-tabular contents listings rendered as a run of
// internal links whose text carries item labels.
func locateLinkTOC(doc *Document) []TocEntry {
	limit := len(doc.Blocks)
	if limit > linkScanLimit {
		limit = linkScanLimit
	}

	var entries []TocEntry
	seen := make(map[string]bool)
	for i := 0; i < limit; i++ {
		blk := &doc.Blocks[i]
		if blk.node == nil || blk.Kind == KindTable {
			continue
		}
		for _, a := range findElements(blk.node, "a") {
			href := strings.TrimSpace(attrVal(a, "href"))
			if !strings.HasPrefix(href, "#") || len(href) == 1 {
				continue
			}
			text := NormalizeText(nodeText(a))
			ids := extractItemIDs(text)
			if len(ids) == 0 {
				continue
			}
			title := rowTitle(text)
			for _, id := range ids {
				if seen[id] {
					continue
				}
				seen[id] = true
				entries = append(entries, TocEntry{
					ItemID: id,
					Title:  title,
					Anchor: href[1:],
					Source: StrategyLinks,
					Pos:    -1,
				})
			}
		}
	}
	if len(seen) < minLinkEntries {
		return nil
	}
	return entries
}
