package filing

import (
	"strings"

	"golang.org/x/net/html"
)

// =============================================================================
// TOC LOCATOR - tabular strategy
// =============================================================================

// minTableEntries is the number of distinct item rows a table must carry
// before it is treated as a table of contents rather than a cross-reference
// table embedded in the body.
const minTableEntries = 3

// locateTableTOC scans the block sequence for the first table whose rows pair
// item labels with internal anchor links and reads one entry per labelled row.
// Combined rows ("Items 1 and 2.") produce one entry per item, all pointing at
// the same row anchor.
func locateTableTOC(doc *Document) []TocEntry {
	for i := range doc.Blocks {
		blk := &doc.Blocks[i]
		if blk.Kind != KindTable || blk.node == nil {
			continue
		}
		entries := tableEntries(blk.node)
		if countDistinctItems(entries) >= minTableEntries {
			return entries
		}
	}
	return nil
}

func tableEntries(table *html.Node) []TocEntry {
	var entries []TocEntry
	for _, row := range findElements(table, "tr") {
		text := NormalizeText(nodeText(row))
		ids := extractItemIDs(text)
		if len(ids) == 0 {
			continue
		}
		anchor := firstInternalHref(row)
		title := rowTitle(text)
		for _, id := range ids {
			entries = append(entries, TocEntry{
				ItemID: id,
				Title:  title,
				Anchor: anchor,
				Source: StrategyTable,
				Pos:    -1,
			})
		}
	}
	return entries
}

// rowTitle strips the item label prefix and trailing page number from a TOC
// row, leaving the section title. Combined "Items 1 and 2." leads are removed
// whole so neither label bleeds into the title.
func rowTitle(text string) string {
	if m := comboItemRe.FindStringIndex(text); m != nil && m[0] == 0 {
		text = text[m[1]:]
	} else if m := headingLeadRe.FindStringIndex(text); m != nil {
		text = text[m[1]:]
	}
	text = strings.TrimLeft(text, " .:-")
	return cleanItemTitle(text)
}

// firstInternalHref returns the target of the first same-document link inside
// the subtree, with the leading '#' removed.
func firstInternalHref(n *html.Node) string {
	for _, a := range findElements(n, "a") {
		href := strings.TrimSpace(attrVal(a, "href"))
		if strings.HasPrefix(href, "#") && len(href) > 1 {
			return href[1:]
		}
	}
	return ""
}

// findElements collects descendant elements with the given tag in document
// order.
func findElements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	if n.Type == html.ElementNode && n.Data == tag {
		out = append([]*html.Node{n}, out...)
	}
	return out
}

func countDistinctItems(entries []TocEntry) int {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.ItemID] = true
	}
	return len(seen)
}
