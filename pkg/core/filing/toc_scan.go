package filing

// =============================================================================
// TOC LOCATOR - structural fallback
// =============================================================================

// maxFallbackHeadingLen caps how long a line can be and still read as a
// section heading rather than running text that happens to start with a
// label.
const maxFallbackHeadingLen = 200

// minFallbackEntries is the smallest label set the fallback accepts. A single
// stray "Item 5." line is not evidence of a contents structure.
const minFallbackEntries = 2

// fallbackScanLimit widens the link strategy's prefix window for the last
// resort scan. It still caps worst-case work on huge filings.
const fallbackScanLimit = 3 * linkScanLimit

// locateFallbackTOC runs when no tabular or linked contents exists. It scans
// a widened document prefix for emphasized item-label lines and treats those
// heading occurrences as the expected-section list, recording the position of
// each so boundaries can be placed without anchors.
func locateFallbackTOC(doc *Document) []TocEntry {
	var entries []TocEntry
	seen := make(map[string]bool)

	limit := len(doc.Blocks)
	if limit > fallbackScanLimit {
		limit = fallbackScanLimit
	}
	for i := 0; i < limit; i++ {
		blk := &doc.Blocks[i]
		if blk.Kind == KindTable {
			continue
		}
		if len(blk.Text) == 0 || len(blk.Text) > maxFallbackHeadingLen {
			continue
		}
		if !isItemHeadingLine(blk.Text) {
			continue
		}
		if !headingEmphasis(blk) {
			continue
		}
		ids := extractItemIDs(blk.Text)
		title := rowTitle(blk.Text)
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			entries = append(entries, TocEntry{
				ItemID: id,
				Title:  title,
				Source: StrategyFallback,
				Pos:    blk.Position,
			})
		}
	}
	if len(seen) < minFallbackEntries {
		return nil
	}
	return entries
}

// headingEmphasis reports whether a block carries any visual heading signal.
func headingEmphasis(blk *Block) bool {
	if blk.BulletOnlyBold {
		return false
	}
	return blk.Bold || blk.Centered || blk.Underline ||
		blk.Kind == KindHeading || blk.BoldLead != ""
}
