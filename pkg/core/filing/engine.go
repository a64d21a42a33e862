package filing

import (
	"fmt"
	"log/slog"
)

// =============================================================================
// ENGINE - single-document pipeline front
// =============================================================================

// Catalog is the expected-item set for one form type. The engine treats it as
// immutable; labels outside the catalog are collected into the TOC but never
// extracted.
type Catalog interface {
	// InScope reports whether an item id belongs to the form.
	InScope(itemID string) bool
	// Title returns the canonical display title for an item id, "" if unknown.
	Title(itemID string) string
}

// Engine runs the full segmentation pipeline for one document at a time. It
// holds no per-document state, so one Engine may serve many goroutines as
// long as each call gets its own document.
type Engine struct {
	log *slog.Logger
}

func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

// Extraction is the result of one Extract call plus the retained block
// sequence, so structure trees can be built afterwards without re-parsing.
type Extraction struct {
	Result
	doc   *Document
	spans map[string]ItemSpan
}

// Extract runs collection, TOC discovery, boundary resolution and item
// extraction over one filing document.
//
// ErrNoTOC (wrapped) means the document should be skipped. Individual items
// that cannot be located are listed in Result.Unresolved and omitted from
// Items; they never fail the document. Any panic out of the pipeline is
// converted into a per-document error so batch callers keep running.
func (e *Engine) Extract(htmlContent string, cat Catalog, id FilingID) (_ *Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract %s: structural failure: %v", id.AccessionNumber, r)
		}
	}()

	doc, err := Collect(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", id.AccessionNumber, err)
	}

	toc, err := LocateTOC(doc)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", id.AccessionNumber, err)
	}

	entries := filterInScope(toc, cat)
	if len(entries) == 0 {
		return nil, fmt.Errorf("extract %s: no in-scope entries: %w", id.AccessionNumber, ErrNoTOC)
	}

	spans, unresolved := ResolveBoundaries(doc, entries)
	items := ExtractItems(doc, entries, spans)

	e.log.Debug("filing extracted",
		"accession", id.AccessionNumber,
		"toc_entries", len(entries),
		"items", len(items),
		"unresolved", len(unresolved))

	return &Extraction{
		Result: Result{
			Filing:     id,
			TOC:        entries,
			Items:      items,
			Unresolved: unresolved,
		},
		doc:   doc,
		spans: spans,
	}, nil
}

// filterInScope keeps only catalog items, backfilling empty titles from the
// catalog's canonical names.
func filterInScope(entries []TocEntry, cat Catalog) []TocEntry {
	if cat == nil {
		return entries
	}
	var out []TocEntry
	for _, e := range entries {
		if !cat.InScope(e.ItemID) {
			continue
		}
		if e.Title == "" {
			e.Title = cat.Title(e.ItemID)
		}
		out = append(out, e)
	}
	return out
}

// Structure builds the heading/body tree for one extracted item. Items listed
// as unresolved return ErrItemUnresolved.
func (x *Extraction) Structure(itemID string) (*StructureNode, error) {
	span, ok := x.spans[itemID]
	if !ok {
		return nil, fmt.Errorf("structure %s: %w", itemID, ErrItemUnresolved)
	}
	title := itemID
	if item, ok := x.Items[itemID]; ok && item.Title != "" {
		title = item.Title
	}
	return BuildStructure(x.doc, span, title), nil
}

// Structures builds trees for every resolved item.
func (x *Extraction) Structures() map[string]*StructureNode {
	out := make(map[string]*StructureNode, len(x.spans))
	for itemID := range x.spans {
		if tree, err := x.Structure(itemID); err == nil {
			out[itemID] = tree
		}
	}
	return out
}
