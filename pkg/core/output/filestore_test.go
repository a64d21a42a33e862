package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"itemxtract/pkg/core/filing"
)

func testResult() *filing.Result {
	return &filing.Result{
		Filing: filing.FilingID{
			CIK:             "0000320193",
			AccessionNumber: "0000320193-24-000001",
			Form:            "10-K",
			FiscalYear:      2023,
		},
		Items: map[string]filing.ExtractedItem{
			"1":  {ItemID: "1", Title: "Business", HTMLContent: "<p>x</p>", TextContent: "x"},
			"1A": {ItemID: "1A", Title: "Risk Factors", HTMLContent: "<p>y</p>", TextContent: "y"},
		},
	}
}

func TestFileStoreLayout(t *testing.T) {
	base := t.TempDir()
	s := NewFileStore(base)
	res := testResult()

	if err := s.SaveResult(res); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	dir := filepath.Join(base, "320193", "2023", "10-K")
	for _, name := range []string{"item_1.json", "item_1a.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "item_1a.json"))
	if err != nil {
		t.Fatal(err)
	}
	var item filing.ExtractedItem
	if err := json.Unmarshal(data, &item); err != nil {
		t.Fatalf("item file not valid json: %v", err)
	}
	if item.ItemID != "1A" || item.Title != "Risk Factors" {
		t.Errorf("round-tripped item = %+v", item)
	}
}

func TestFileStoreStructureAndHTML(t *testing.T) {
	base := t.TempDir()
	s := NewFileStore(base)
	id := testResult().Filing

	body := "text"
	tree := &filing.StructureNode{Type: filing.NodeHeading, Layer: 1, Heading: "Business", Body: &body, Children: []*filing.StructureNode{}}
	if err := s.SaveStructure(id, "1", tree); err != nil {
		t.Fatalf("SaveStructure failed: %v", err)
	}
	if err := s.SaveHTML(id, "<html></html>"); err != nil {
		t.Fatalf("SaveHTML failed: %v", err)
	}

	dir := s.Dir(id)
	if _, err := os.Stat(filepath.Join(dir, "structure_1.json")); err != nil {
		t.Errorf("structure file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "filing.htm")); err != nil {
		t.Errorf("html file missing: %v", err)
	}
}

func TestFileStoreSanitizesAmendedForms(t *testing.T) {
	s := NewFileStore("/tmp/out")
	dir := s.Dir(filing.FilingID{CIK: "1", Form: "10-K/A", FiscalYear: 2022})
	if filepath.Base(dir) != "10-K-A" {
		t.Errorf("form dir = %s", filepath.Base(dir))
	}
}
