package filing

import (
	"regexp"
	"strings"
	"unicode"
)

// =============================================================================
// SEGMENT EXTRACTOR - markup slices and cleaned text per item
// =============================================================================

// terminalClauseRe matches an explicit "nothing to report" clause and only
// that clause. "None of our properties ..." must not match; the marker word
// has to run straight into its closing punctuation.
var terminalClauseRe = regexp.MustCompile(`(?i)^[\s,:;-]*(none|not applicable|n/a)\s*[.!]`)

// ExtractItems materializes one ExtractedItem per resolved span. The markup
// slice is the concatenation of the span's retained block fragments, so byte
// fidelity to the source is preserved; the text side is the normalized block
// text with residual page furniture dropped.
func ExtractItems(doc *Document, entries []TocEntry, spans map[string]ItemSpan) map[string]ExtractedItem {
	titles := make(map[string]string, len(entries))
	for _, e := range entries {
		titles[e.ItemID] = e.Title
	}

	items := make(map[string]ExtractedItem, len(spans))
	for itemID, span := range spans {
		var htmlParts, textParts []string
		for i := span.Start; i < span.End; i++ {
			blk := &doc.Blocks[i]
			if blk.HTML != "" {
				htmlParts = append(htmlParts, blk.HTML)
			}
			if blk.Text == "" || isNoiseLine(blk.Text) {
				continue
			}
			textParts = append(textParts, blk.Text)
		}
		text := strings.Join(textParts, "\n")
		text = trimTerminalMarker(text, itemID, titles[itemID])
		items[itemID] = ExtractedItem{
			ItemID:      itemID,
			Title:       titles[itemID],
			HTMLContent: strings.Join(htmlParts, "\n"),
			TextContent: text,
		}
	}
	return items
}

// trimTerminalMarker cuts an item down to its heading plus the terminal
// clause when the body opens with a bare "None." or "Not applicable.". Only
// the first clause after the item label and title is eligible; a later
// occurrence, or a marker word that continues into a sentence, leaves the
// text untouched.
func trimTerminalMarker(text, itemID, title string) string {
	idx := 0
	if itemID != "" {
		if m := itemHeadingRe(itemID).FindStringIndex(text); m != nil {
			idx = m[1]
			// The label's own trailing punctuation belongs to the heading.
			for idx < len(text) && (text[idx] == '.' || text[idx] == ':' || text[idx] == ' ') {
				idx++
			}
		}
	}
	if title != "" {
		if end, ok := foldedPrefixEnd(text[idx:], title); ok {
			idx += end
		}
	}
	rest := text[idx:]
	m := terminalClauseRe.FindStringIndex(rest)
	if m == nil {
		return text
	}
	return strings.TrimSpace(text[:idx+m[1]])
}

// foldedPrefixEnd checks whether text begins with title when both are folded
// to lowercase alphanumerics, and returns the byte offset in text just past
// the matched prefix.
func foldedPrefixEnd(text, title string) (int, bool) {
	want := foldAlnum(title)
	if want == "" {
		return 0, false
	}
	var got strings.Builder
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			got.WriteRune(unicode.ToLower(r))
		}
		if got.Len() >= len(want) {
			if got.String() == want {
				return i + len(string(r)), true
			}
			return 0, false
		}
	}
	return 0, false
}

func foldAlnum(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}
