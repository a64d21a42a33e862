package filing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// =============================================================================
// BLOCK COLLECTOR - ordered content blocks from parsed filing HTML
// =============================================================================

var (
	boldStyleRe      = regexp.MustCompile(`font-weight\s*:\s*(bold|[6-9]00)`)
	italicStyleRe    = regexp.MustCompile(`font-style\s*:\s*italic`)
	underlineStyleRe = regexp.MustCompile(`text-decoration[^;]*underline`)
	centerStyleRe    = regexp.MustCompile(`text-align\s*:\s*center`)
)

// bulletGlyphs are the characters a bold bullet marker may consist of.
var bulletGlyphs = map[string]bool{
	"•": true, "●": true, "◦": true, "·": true,
	"-": true, "–": true, "*": true,
}

// Collect parses filing HTML and walks it in document order, producing the
// block sequence plus the anchor index. Script and style subtrees are dropped
// before the walk so their text never leaks into blocks.
func Collect(htmlContent string) (*Document, error) {
	gdoc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse filing html: %w", err)
	}
	gdoc.Find("script, style").Remove()

	root := gdoc.Find("body").Nodes
	if len(root) == 0 {
		root = gdoc.Selection.Nodes
	}
	if len(root) == 0 {
		return nil, fmt.Errorf("parse filing html: empty document")
	}

	c := &collector{doc: &Document{anchorPos: make(map[string]int)}}
	for _, n := range root {
		c.walk(n)
	}
	return c.doc, nil
}

type collector struct {
	doc *Document
}

func (c *collector) walk(n *html.Node) {
	if n.Type != html.ElementNode {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode {
				c.walk(child)
			}
		}
		return
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		c.emit(n, KindHeading, int(n.Data[1]-'0'))
		return
	case "p":
		c.emit(n, KindParagraph, 0)
		return
	case "li":
		c.emit(n, KindListItem, 0)
		return
	case "table":
		c.emit(n, KindTable, 0)
		return
	case "div":
		// A div that only wraps smaller block elements is a layout shell;
		// recurse so the inner blocks are collected without duplication.
		if containsBlockChild(n) {
			c.recordAnchorAttrs(n)
			c.recurse(n)
			return
		}
		c.emit(n, KindContainer, 0)
		return
	default:
		c.recordAnchorAttrs(n)
		c.recurse(n)
	}
}

func (c *collector) recurse(n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child)
	}
}

// recordAnchorAttrs maps id/name attributes to the position of the next block
// to be emitted. Anchors that sit between blocks (empty <a name> elements)
// therefore resolve to the block that follows them.
func (c *collector) recordAnchorAttrs(n *html.Node) []string {
	var found []string
	for _, attr := range n.Attr {
		if attr.Key != "id" && attr.Key != "name" {
			continue
		}
		val := strings.TrimSpace(attr.Val)
		if val == "" {
			continue
		}
		found = append(found, val)
		if _, exists := c.doc.anchorPos[val]; !exists {
			c.doc.anchorPos[val] = len(c.doc.Blocks)
		}
	}
	return found
}

// emit builds one Block from an element subtree. Text-empty, anchor-free
// blocks are recorded nowhere; their anchors (if any) still point at the next
// real block.
func (c *collector) emit(n *html.Node, kind BlockKind, level int) {
	pos := len(c.doc.Blocks)
	anchors := c.collectAnchors(n, pos)
	text := NormalizeText(nodeText(n))
	if text == "" && len(anchors) == 0 && kind != KindTable {
		return
	}

	blk := Block{
		Position:     pos,
		Kind:         kind,
		HeadingLevel: level,
		Text:         text,
		HTML:         renderNode(n),
		Anchors:      anchors,
		node:         n,
	}
	c.applyStyles(&blk, n)
	c.doc.Blocks = append(c.doc.Blocks, blk)
}

// collectAnchors registers every id/name attribute inside the subtree as
// pointing at this block.
func (c *collector) collectAnchors(n *html.Node, pos int) []string {
	var anchors []string
	var scan func(*html.Node)
	scan = func(node *html.Node) {
		if node.Type == html.ElementNode {
			for _, attr := range node.Attr {
				if attr.Key != "id" && attr.Key != "name" {
					continue
				}
				val := strings.TrimSpace(attr.Val)
				if val == "" {
					continue
				}
				anchors = append(anchors, val)
				if _, exists := c.doc.anchorPos[val]; !exists {
					c.doc.anchorPos[val] = pos
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			scan(child)
		}
	}
	scan(n)
	return anchors
}

// applyStyles aggregates style signals over the block and its descendants and
// derives the bold-lead and bullet-only-bold signals the structure builder
// classifies on.
func (c *collector) applyStyles(blk *Block, n *html.Node) {
	centered := centerStyleRe.MatchString(styleAttr(n)) || strings.EqualFold(attrVal(n, "align"), "center")

	var (
		italic, underline bool
		boldTexts         []string
		firstBold         string
		haveFirstBold     bool
	)

	var scan func(node *html.Node, inBold bool)
	scan = func(node *html.Node, inBold bool) {
		if node.Type == html.ElementNode {
			style := styleAttr(node)
			bold := isBoldElement(node, style)
			if bold && !inBold {
				raw := nodeText(node)
				boldTexts = append(boldTexts, strings.TrimSpace(raw))
				if !haveFirstBold {
					firstBold = NormalizeText(raw)
					haveFirstBold = true
				}
			}
			if node.Data == "i" || node.Data == "em" || italicStyleRe.MatchString(style) {
				italic = true
			}
			if node.Data == "u" || underlineStyleRe.MatchString(style) {
				underline = true
			}
			if centerStyleRe.MatchString(style) {
				centered = true
			}
			inBold = inBold || bold
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			scan(child, inBold)
		}
	}
	blockStyle := styleAttr(n)
	blockBold := isBoldElement(n, blockStyle) || blk.Kind == KindHeading
	scan(n, blockBold)

	blk.Italic = italic
	blk.Underline = underline
	blk.Centered = centered

	switch {
	case blockBold:
		blk.Bold = true
	case haveFirstBold && firstBold != "":
		full := strings.ToLower(blk.Text)
		lead := strings.ToLower(firstBold)
		if lead == full {
			blk.Bold = true
		} else if strings.HasPrefix(full, lead) {
			blk.BoldLead = firstBold
		}
		// Bold emphasis mid-text is not a heading signal.
	}

	// A bullet list item often bolds only the glyph; the sentence itself is
	// normal weight and must not read as a heading.
	if len(boldTexts) > 0 && !blockBold {
		onlyGlyphs := true
		for _, bt := range boldTexts {
			if bt != "" && !bulletGlyphs[bt] {
				onlyGlyphs = false
				break
			}
		}
		if onlyGlyphs {
			blk.BulletOnlyBold = true
			blk.Bold = false
			blk.BoldLead = ""
		}
	}
}

func isBoldElement(n *html.Node, style string) bool {
	return n.Data == "b" || n.Data == "strong" || boldStyleRe.MatchString(style)
}

func styleAttr(n *html.Node) string {
	return strings.ToLower(attrVal(n, "style"))
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// containsBlockChild reports whether a div wraps smaller block elements.
func containsBlockChild(n *html.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			switch child.Data {
			case "p", "li", "td", "h1", "h2", "h3", "h4", "h5", "h6":
				return true
			}
			if containsBlockChild(child) {
				return true
			}
		}
	}
	return false
}

// nodeText concatenates the text content of a subtree, space-separated.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			t := strings.TrimSpace(node.Data)
			if t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}
