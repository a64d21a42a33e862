package filing

import (
	"regexp"
	"strings"
)

// Item label shapes seen in real filings. TOC rows and headings render the
// same item as "Item 1A", "ITEM 1A.", "1A. Risk Factors", "PART II. 5. Market
// for ..." or combined rows like "Items 1 and 2. Business and Properties".
var (
	comboItemRe = regexp.MustCompile(`(?i)\bitems?\s+(\d{1,2}[a-z]?)\s*[.:]?\s+and\s+(\d{1,2}[a-z]?)\b`)
	wordItemRe  = regexp.MustCompile(`(?i)\bitem\s+(\d{1,2}[a-z]?)\b`)
	partItemRe  = regexp.MustCompile(`(?i)\bpart\s+[ivx]+\s*[.:-]?\s*(\d{1,2}[a-z]?)\s*[.:]`)
	bareItemRe  = regexp.MustCompile(`(?i)(?:^|[^\d])(\d{1,2}[a-z]?)\s*[.:]\s*[a-z]`)

	headingLeadRe = regexp.MustCompile(`(?i)^\s*items?\s+\d{1,2}[a-z]?\b`)

	trailingPageRe = regexp.MustCompile(`(\s+\d+\s*|\d+\s*)$`)
	dotPageRe      = regexp.MustCompile(`\.\s*\d+\s*$`)
)

// extractItemIDs returns every item label found in one TOC row or heading
// line, upper-cased, first-seen order, deduplicated. Combined plural rows are
// split first so both labels survive.
func extractItemIDs(text string) []string {
	var found []string
	seen := make(map[string]bool)

	add := func(id string) {
		id = strings.ToUpper(id)
		if id != "" && !seen[id] {
			seen[id] = true
			found = append(found, id)
		}
	}

	if m := comboItemRe.FindStringSubmatch(text); m != nil {
		add(m[1])
		add(m[2])
	}
	for _, m := range wordItemRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range partItemRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range bareItemRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	return found
}

// isItemHeadingLine reports whether a line starts with an item label
// ("Item 7. ..." / "Items 1 and 2 ...").
func isItemHeadingLine(text string) bool {
	return headingLeadRe.MatchString(text)
}

// itemHeadingRe builds the heading pattern for one specific item id, used by
// the heading fallback when a TOC entry has no anchor.
func itemHeadingRe(itemID string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*items?\s+` + regexp.QuoteMeta(itemID) + `\b`)
}

// cleanItemTitle strips trailing page numbers from a TOC row text so the
// title is usable as a display label. The wording itself is kept verbatim.
func cleanItemTitle(text string) string {
	t := strings.TrimSpace(text)
	t = dotPageRe.ReplaceAllString(t, ".")
	t = trailingPageRe.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}
