package filing

import "strings"

// =============================================================================
// STRUCTURE BUILDER - heading/body tree for one item span
// =============================================================================

// maxHeadingTextLen is the longest line still read as a heading. A fully bold
// paragraph beyond this is body text with emphatic styling.
const maxHeadingTextLen = 150

// BuildStructure walks one resolved span and classifies each block into the
// heading/body tree. No re-parse happens here; the collector's blocks carry
// every style signal the classification needs. The returned root is a layer-1
// heading named after the item.
func BuildStructure(doc *Document, span ItemSpan, rootTitle string) *StructureNode {
	b := newTreeBuilder(rootTitle)
	for i := span.Start; i < span.End; i++ {
		b.consume(&doc.Blocks[i])
	}
	return b.materialize()
}

// treeBuilder holds the arena of nodes plus the open-heading stack. Nodes
// reference children by arena index until materialization, so appends never
// invalidate links.
type treeBuilder struct {
	nodes []arenaNode
	stack []int // arena indices of open headings, layers strictly increasing
}

type arenaNode struct {
	layer    int
	heading  string
	body     []string
	children []int
}

func newTreeBuilder(rootTitle string) *treeBuilder {
	b := &treeBuilder{}
	b.nodes = append(b.nodes, arenaNode{layer: 1, heading: rootTitle})
	b.stack = append(b.stack, 0)
	return b
}

// consume classifies one block and routes it into the tree.
func (b *treeBuilder) consume(blk *Block) {
	text := blk.Text
	if text == "" || isNoiseLine(text) {
		return
	}

	// The item's own heading line is the root; repeating it as a child would
	// nest the item under itself.
	if isItemHeadingLine(text) {
		return
	}

	// Bold bullet glyphs, list items and tables never open headings.
	if blk.BulletOnlyBold || blk.Kind == KindListItem || blk.Kind == KindTable {
		b.appendBody(text)
		return
	}

	switch {
	case blk.Bold && len(text) <= maxHeadingTextLen && !endsSentence(text):
		b.openHeading(2, strings.TrimSpace(text))
	case blk.Bold && len(text) <= maxHeadingTextLen:
		// A short, fully bold sentence reads as a sub-heading one layer in.
		b.openHeading(3, strings.TrimSpace(text))
	case blk.BoldLead != "" && len(blk.BoldLead) <= maxHeadingTextLen:
		// "Contracts. We enter into ..." opens a run-in heading and the
		// unbolded remainder becomes its first body line.
		layer := b.topLayer() + 1
		b.openHeading(layer, strings.TrimSuffix(strings.TrimSpace(blk.BoldLead), "."))
		remainder := strings.TrimSpace(text[len(blk.BoldLead):])
		if remainder != "" {
			b.appendBody(remainder)
		}
	default:
		b.appendBody(text)
	}
}

// openHeading pops the stack down to the nearest shallower layer and attaches
// a new heading node there.
func (b *treeBuilder) openHeading(layer int, heading string) {
	if layer < 2 {
		layer = 2
	}
	for len(b.stack) > 1 && b.nodes[b.stack[len(b.stack)-1]].layer >= layer {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1]
	idx := len(b.nodes)
	b.nodes = append(b.nodes, arenaNode{layer: layer, heading: heading})
	b.nodes[parent].children = append(b.nodes[parent].children, idx)
	b.stack = append(b.stack, idx)
}

// appendBody adds text to the innermost open heading.
func (b *treeBuilder) appendBody(text string) {
	top := b.stack[len(b.stack)-1]
	b.nodes[top].body = append(b.nodes[top].body, text)
}

func (b *treeBuilder) topLayer() int {
	return b.nodes[b.stack[len(b.stack)-1]].layer
}

// materialize converts the arena into the serializable node tree. Headings
// whose body stayed empty keep a nil Body; body lines concatenate with a
// single separating space. A titleless span that never opened a heading
// collapses to one plain body-only node.
func (b *treeBuilder) materialize() *StructureNode {
	var build func(idx int) *StructureNode
	build = func(idx int) *StructureNode {
		an := &b.nodes[idx]
		node := &StructureNode{
			Type:     NodeHeading,
			Layer:    an.layer,
			Heading:  an.heading,
			Children: []*StructureNode{},
		}
		if len(an.body) > 0 {
			body := strings.Join(an.body, " ")
			node.Body = &body
		}
		for _, child := range an.children {
			node.Children = append(node.Children, build(child))
		}
		return node
	}
	root := build(0)
	if root.Heading == "" && len(root.Children) == 0 {
		root.Type = NodeText
	}
	return root
}

// endsSentence reports terminal sentence punctuation, which separates section
// titles ("Human Capital") from bold lead-in sentences.
func endsSentence(text string) bool {
	t := strings.TrimRight(text, `"')`)
	return strings.HasSuffix(t, ".") || strings.HasSuffix(t, "!") || strings.HasSuffix(t, "?")
}
