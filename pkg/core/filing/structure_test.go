package filing

import (
	"testing"
)

const structureItemHTML = `
<html><body>
<p style="font-weight:bold">Item 1. Business</p>
<p>PART I</p>
<p style="font-weight:bold">Overview</p>
<p>We make widgets.</p>
<p style="font-weight:bold">Human Capital</p>
<p>Our goal is safety.</p>
<p><b>Contracts.</b> We enter into long-term supply contracts.</p>
<ul><li><b>&#8226;</b> expand manufacturing capacity</li></ul>
<p style="font-weight:bold">COMPETITION</p>
<p>The market is competitive.</p>
</body></html>`

func buildTestStructure(t *testing.T) *StructureNode {
	t.Helper()
	doc, err := Collect(structureItemHTML)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	span := ItemSpan{ItemID: "1", Start: 0, End: len(doc.Blocks)}
	return BuildStructure(doc, span, "Business")
}

func TestBuildStructureHierarchy(t *testing.T) {
	root := buildTestStructure(t)

	if root.Type != NodeHeading || root.Layer != 1 || root.Heading != "Business" {
		t.Fatalf("root = %+v", root)
	}
	if len(root.Children) != 3 {
		t.Fatalf("root has %d children, want 3", len(root.Children))
	}

	names := []string{"Overview", "Human Capital", "COMPETITION"}
	for i, want := range names {
		child := root.Children[i]
		if child.Heading != want || child.Layer != 2 {
			t.Errorf("child %d = %q layer %d, want %q layer 2", i, child.Heading, child.Layer, want)
		}
	}

	overview := root.Children[0]
	if overview.Body == nil || *overview.Body != "We make widgets." {
		t.Errorf("overview body = %v", overview.Body)
	}
	if len(overview.Children) != 0 {
		t.Errorf("overview has %d children", len(overview.Children))
	}
}

func TestBuildStructureRunInHeading(t *testing.T) {
	root := buildTestStructure(t)
	humanCapital := root.Children[1]

	if len(humanCapital.Children) != 1 {
		t.Fatalf("human capital children = %d, want 1", len(humanCapital.Children))
	}
	contracts := humanCapital.Children[0]
	if contracts.Heading != "Contracts" || contracts.Layer != 3 {
		t.Errorf("run-in heading = %q layer %d", contracts.Heading, contracts.Layer)
	}
	if contracts.Body == nil {
		t.Fatal("run-in heading lost its body")
	}
	body := *contracts.Body
	if body != "We enter into long-term supply contracts. expand manufacturing capacity" {
		t.Errorf("run-in body = %q", body)
	}
}

func TestBuildStructureBodyLinesJoinWithSpace(t *testing.T) {
	html := `
<html><body>
<p style="font-weight:bold">Overview</p>
<p>First paragraph.</p>
<p>Second paragraph.</p>
</body></html>`
	doc, err := Collect(html)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	root := BuildStructure(doc, ItemSpan{Start: 0, End: len(doc.Blocks)}, "Business")
	overview := root.Children[0]
	if overview.Body == nil || *overview.Body != "First paragraph. Second paragraph." {
		t.Errorf("overview body = %v", overview.Body)
	}
}

func TestBuildStructureTitlelessFlatSpanIsTextNode(t *testing.T) {
	html := `
<html><body>
<p>Plain narrative with no internal headings.</p>
<p>A second plain paragraph.</p>
</body></html>`
	doc, err := Collect(html)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	root := BuildStructure(doc, ItemSpan{Start: 0, End: len(doc.Blocks)}, "")
	if root.Type != NodeText || root.Layer != 1 || root.Heading != "" {
		t.Fatalf("root = %+v", root)
	}
	if root.Body == nil || *root.Body != "Plain narrative with no internal headings. A second plain paragraph." {
		t.Errorf("root body = %v", root.Body)
	}
	if len(root.Children) != 0 {
		t.Errorf("text node has %d children", len(root.Children))
	}
}

func TestBuildStructureSkipsItemLineAndNoise(t *testing.T) {
	root := buildTestStructure(t)

	var walk func(n *StructureNode)
	var all []*StructureNode
	walk = func(n *StructureNode) {
		all = append(all, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)

	for _, n := range all {
		if n.Heading == "Item 1. Business" || n.Heading == "PART I" {
			t.Errorf("noise or item line became a heading: %q", n.Heading)
		}
		if n.Body != nil && (*n.Body == "PART I") {
			t.Errorf("noise line kept as body: %q", *n.Body)
		}
	}
}

func TestBuildStructureBoldSentence(t *testing.T) {
	html := `
<html><body>
<p style="font-weight:bold">Outlook</p>
<p style="font-weight:bold">We expect continued growth.</p>
<p>Details follow.</p>
</body></html>`
	doc, err := Collect(html)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	root := BuildStructure(doc, ItemSpan{Start: 0, End: len(doc.Blocks)}, "MD&A")

	if len(root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(root.Children))
	}
	outlook := root.Children[0]
	if len(outlook.Children) != 1 {
		t.Fatalf("outlook children = %d, want 1", len(outlook.Children))
	}
	sentence := outlook.Children[0]
	if sentence.Layer != 3 || sentence.Heading != "We expect continued growth." {
		t.Errorf("bold sentence node = %+v", sentence)
	}
	if sentence.Body == nil || *sentence.Body != "Details follow." {
		t.Errorf("bold sentence body = %v", sentence.Body)
	}
}

func TestBuildStructureTablesAreBody(t *testing.T) {
	html := `
<html><body>
<p style="font-weight:bold">Selected Data</p>
<table><tr><td>Revenue</td><td>100</td></tr></table>
</body></html>`
	doc, err := Collect(html)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	root := BuildStructure(doc, ItemSpan{Start: 0, End: len(doc.Blocks)}, "Financials")
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d", len(root.Children))
	}
	data := root.Children[0]
	if data.Body == nil || *data.Body != "Revenue 100" {
		t.Errorf("table body = %v", data.Body)
	}
}
