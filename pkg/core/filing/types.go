// Package filing implements the segmentation and structuring engine for SEC
// filing HTML: table-of-contents detection, item boundary resolution, item
// extraction and heading/body structure building.
//
// This package uses the following external libraries:
//   - github.com/PuerkitoBio/goquery: jQuery-style HTML traversal for TOC tables and links
//   - golang.org/x/net/html: node-level document-order walking
//   - golang.org/x/text: Unicode normalization of extracted text
package filing

import (
	"errors"

	"golang.org/x/net/html"
)

// =============================================================================
// DIAGNOSTIC OUTCOMES
// =============================================================================

// ErrNoTOC is returned when no table of contents can be discovered anywhere in
// the document. It means "skip this filing", not "the filing is broken".
var ErrNoTOC = errors.New("no table of contents found")

// ErrItemUnresolved is reported per item when neither an anchor nor the
// heading fallback can locate its start. Sibling items proceed normally.
var ErrItemUnresolved = errors.New("item not resolvable in document")

// =============================================================================
// BLOCK COLLECTOR TYPES
// =============================================================================

// BlockKind classifies a content block by its source tag.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindListItem
	KindContainer
	KindTable
)

// Block is one content-bearing node in document order. Blocks are immutable
// once collected; everything downstream of the collector reads them only.
type Block struct {
	Position     int       // monotonic document-order index, unique
	Kind         BlockKind // source tag class
	HeadingLevel int       // 1..6 when Kind == KindHeading, else 0
	Text         string    // normalized extractable text
	HTML         string    // markup fragment, retained for later slicing

	// Style signals aggregated over the block and its descendants.
	Bold      bool
	Italic    bool
	Underline bool
	Centered  bool

	// BoldLead is the text of a leading bold run when the block starts with
	// one that does not cover the whole text ("" otherwise).
	BoldLead string
	// BulletOnlyBold reports that the only bold content is a bullet glyph.
	BulletOnlyBold bool

	// Anchors carried by this block or its descendants (id/name attributes).
	Anchors []string

	node *html.Node // retained for locator-internal row/link scans
}

// Document is the collector output: the ordered block sequence plus an index
// from anchor name to the position of the block it points at.
type Document struct {
	Blocks    []Block
	anchorPos map[string]int
}

// AnchorPosition returns the block position an anchor resolves to.
func (d *Document) AnchorPosition(anchor string) (int, bool) {
	pos, ok := d.anchorPos[anchor]
	return pos, ok
}

// =============================================================================
// TOC TYPES
// =============================================================================

// Strategy identifies which locator produced a TOC entry. It is used only for
// merge tie-breaking and diagnostics.
type Strategy int

const (
	StrategyTable Strategy = iota
	StrategyLinks
	StrategyFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyTable:
		return "table"
	case StrategyLinks:
		return "links"
	case StrategyFallback:
		return "fallback"
	}
	return "unknown"
}

// TocEntry is one expected section label discovered in the TOC region.
// Title is preserved verbatim as found, never rewritten to a template.
// Two entries may share one Anchor (combined rows like "Items 1 and 2");
// that sharing is meaningful and must survive merging.
type TocEntry struct {
	ItemID string `json:"item_id"`
	Title  string `json:"title"`
	Anchor string `json:"anchor,omitempty"`

	Source Strategy `json:"-"`
	// AppearanceOrder is the entry's index in its source list, reflecting TOC
	// listing order. It is distinct from numeric item order and is never
	// recomputed after merge.
	AppearanceOrder int `json:"-"`
	// Pos is the block position where the structural fallback saw the label
	// line, or -1 when the entry came from a table or link strategy.
	Pos int `json:"-"`
}

// =============================================================================
// BOUNDARY AND OUTPUT TYPES
// =============================================================================

// ItemSpan is the resolved block-position boundary of one item. Items that
// shared a TOC anchor share a GroupID and carry byte-identical spans.
type ItemSpan struct {
	ItemID  string
	Start   int // inclusive block position
	End     int // exclusive block position
	GroupID int
}

// ExtractedItem is the final output unit for one in-scope item. Never mutated
// after creation.
type ExtractedItem struct {
	ItemID      string `json:"item_number"`
	Title       string `json:"item_title"`
	HTMLContent string `json:"html_content"`
	TextContent string `json:"text_content"`
}

// FilingID carries the filing identity through the engine unchanged.
type FilingID struct {
	CIK             string `json:"cik,omitempty"`
	Ticker          string `json:"ticker,omitempty"`
	AccessionNumber string `json:"accession_number,omitempty"`
	Form            string `json:"form,omitempty"`
	FiscalYear      int    `json:"fiscal_year,omitempty"`
}

// Result is the item-level output for one filing.
type Result struct {
	Filing     FilingID                 `json:"filing"`
	TOC        []TocEntry               `json:"toc"`
	Items      map[string]ExtractedItem `json:"items"`
	Unresolved []string                 `json:"unresolved,omitempty"`
}

// =============================================================================
// STRUCTURE TYPES
// =============================================================================

// Node types in the serialized structure tree.
const (
	NodeHeading = "heading"
	NodeText    = "text"
)

// StructureNode is one node of the heading/body tree. The root has Layer 1
// and corresponds to the item itself; children are in document order. A
// heading that closed without body text keeps Body nil.
type StructureNode struct {
	Type     string           `json:"type"`
	Layer    int              `json:"layer"`
	Heading  string           `json:"heading,omitempty"`
	Body     *string          `json:"body"`
	Children []*StructureNode `json:"children"`
}
