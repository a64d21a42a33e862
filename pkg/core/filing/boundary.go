package filing

import (
	"regexp"
	"sort"
)

// =============================================================================
// BOUNDARY RESOLVER - item spans from TOC entries and anchors
// =============================================================================

// headingLookahead bounds the heading fallback search when no later anchored
// group caps the window.
const headingLookahead = 800

var (
	signaturesRe  = regexp.MustCompile(`(?i)^signatures?\b`)
	exhibitEndRe  = regexp.MustCompile(`(?i)^(exhibit index|index to exhibits)\b`)
	trailingNumRe = regexp.MustCompile(`\s\d{1,4}$`)
)

// boundaryGroup is one set of TOC entries that resolve to a single span.
// Entries that shared a TOC anchor travel together; every other entry forms a
// singleton group.
type boundaryGroup struct {
	itemIDs []string
	anchor  string
	pos     int // fallback-recorded position, -1 if none
	order   int // minimum appearance order across members

	start    int
	end      int
	resolved bool
}

// ResolveBoundaries turns merged TOC entries into block-position spans. The
// ordering authority is TOC appearance order, never numeric item order, so
// filings that interleave sections ("Items 1 and 2" before "Item 1A") come
// out right. Items whose start cannot be located are returned in the second
// value and produce no span; one bad item never blocks its siblings.
func ResolveBoundaries(doc *Document, entries []TocEntry) (map[string]ItemSpan, []string) {
	groups := groupEntries(entries)

	// Starts, in appearance order. Each unresolved heading search is bounded
	// below by the previous resolved start and above by the next anchored
	// group, so one miss cannot cascade into the whole document.
	for i, g := range groups {
		switch {
		case g.anchor != "":
			if pos, ok := doc.AnchorPosition(g.anchor); ok {
				g.start, g.resolved = pos, true
			}
		case g.pos >= 0:
			g.start, g.resolved = g.pos, true
		}
		if !g.resolved {
			lo := 0
			for j := i - 1; j >= 0; j-- {
				if groups[j].resolved {
					lo = groups[j].start + 1
					break
				}
			}
			hi := lo + headingLookahead
			for j := i + 1; j < len(groups); j++ {
				if p, ok := doc.AnchorPosition(groups[j].anchor); ok {
					hi = p
					break
				}
			}
			if pos, ok := findItemHeading(doc, g.itemIDs[0], lo, hi); ok {
				g.start, g.resolved = pos, true
			}
		}
	}

	// Ends. Each kept group runs until the next kept group's start; the last
	// is clipped at the signature block or exhibit index. A group whose end
	// falls at or before its own start is malformed and dropped, and ends are
	// recomputed over the survivors until stable so neighboring spans stay
	// pairwise disjoint even when an anchor lands out of document order.
	kept := make([]*boundaryGroup, 0, len(groups))
	for _, g := range groups {
		if g.resolved {
			kept = append(kept, g)
		}
	}
	for {
		for i, g := range kept {
			if i+1 < len(kept) {
				g.end = kept[i+1].start
			} else {
				g.end = documentEnd(doc, g.start)
			}
		}
		next := kept[:0]
		for _, g := range kept {
			if g.end <= g.start {
				g.resolved = false
				continue
			}
			next = append(next, g)
		}
		if len(next) == len(kept) {
			break
		}
		kept = next
	}

	spans := make(map[string]ItemSpan)
	var unresolved []string
	for id, g := range groups {
		if !g.resolved || g.end <= g.start {
			// A malformed span is indistinguishable in effect from an
			// unlocatable one; both drop the group's items.
			unresolved = append(unresolved, g.itemIDs...)
			continue
		}
		for _, itemID := range g.itemIDs {
			spans[itemID] = ItemSpan{
				ItemID:  itemID,
				Start:   g.start,
				End:     g.end,
				GroupID: id,
			}
		}
	}
	sort.Strings(unresolved)
	return spans, unresolved
}

// groupEntries collapses anchor-sharing entries into combined groups and
// sorts groups by appearance order.
func groupEntries(entries []TocEntry) []*boundaryGroup {
	var groups []*boundaryGroup
	byAnchor := make(map[string]*boundaryGroup)

	for _, e := range entries {
		if e.Anchor != "" {
			if g, ok := byAnchor[e.Anchor]; ok {
				g.itemIDs = append(g.itemIDs, e.ItemID)
				if e.AppearanceOrder < g.order {
					g.order = e.AppearanceOrder
				}
				continue
			}
		}
		g := &boundaryGroup{
			itemIDs: []string{e.ItemID},
			anchor:  e.Anchor,
			pos:     e.Pos,
			order:   e.AppearanceOrder,
		}
		if e.Anchor != "" {
			byAnchor[e.Anchor] = g
		}
		groups = append(groups, g)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].order < groups[j].order
	})
	return groups
}

// findItemHeading locates the first block in [lo, hi) whose text opens with
// the item's own heading pattern. Tables and lines carrying a trailing page
// number (contents rows) are skipped.
func findItemHeading(doc *Document, itemID string, lo, hi int) (int, bool) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(doc.Blocks) {
		hi = len(doc.Blocks)
	}
	re := itemHeadingRe(itemID)
	for i := lo; i < hi; i++ {
		blk := &doc.Blocks[i]
		if blk.Kind == KindTable {
			continue
		}
		if trailingNumRe.MatchString(blk.Text) {
			continue
		}
		if re.MatchString(blk.Text) {
			return i, true
		}
	}
	return 0, false
}

// documentEnd returns the exclusive end for the last item: the first
// signature or exhibit-index block after its start, or the end of the block
// sequence.
func documentEnd(doc *Document, afterStart int) int {
	for i := afterStart + 1; i < len(doc.Blocks); i++ {
		t := doc.Blocks[i].Text
		if len(t) > 60 {
			continue
		}
		if signaturesRe.MatchString(t) || exhibitEndRe.MatchString(t) {
			return i
		}
	}
	return len(doc.Blocks)
}
