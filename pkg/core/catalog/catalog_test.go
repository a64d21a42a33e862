package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTenKCatalog(t *testing.T) {
	c := TenK()
	if c.Form() != "10-K" {
		t.Errorf("form = %q", c.Form())
	}
	if !c.InScope("1A") || !c.InScope("1a") {
		t.Error("1A should be in scope regardless of case")
	}
	if c.InScope("99") {
		t.Error("99 is not a 10-K item")
	}
	if got := c.Title("7"); got != "Management's Discussion and Analysis of Financial Condition and Results of Operations" {
		t.Errorf("title 7 = %q", got)
	}
	if c.Len() != 23 {
		t.Errorf("len = %d, want 23", c.Len())
	}
}

func TestForForm(t *testing.T) {
	cases := []struct {
		form    string
		wantLen int
		wantErr bool
	}{
		{"10-K", 23, false},
		{"10-k", 23, false},
		{"10-K/A", 23, false},
		{"10-Q", 7, false},
		{"8-K", 0, true},
	}
	for _, c := range cases {
		got, err := ForForm(c.form)
		if c.wantErr {
			if err == nil {
				t.Errorf("ForForm(%q): expected error", c.form)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForForm(%q): %v", c.form, err)
			continue
		}
		if got.Len() != c.wantLen {
			t.Errorf("ForForm(%q) len = %d, want %d", c.form, got.Len(), c.wantLen)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `form: 10-K
items:
  - id: "1"
    title: Business
  - id: "1a"
    title: Risk Factors
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if c.Len() != 2 || !c.InScope("1A") {
		t.Errorf("loaded catalog = %+v", c.Items())
	}
	if c.Title("1") != "Business" {
		t.Errorf("title 1 = %q", c.Title("1"))
	}
}

func TestLoadHJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.hjson")
	content := `{
  form: 10-Q
  # quarterly subset with a comment, the reason hjson is accepted at all
  items: [
    {
      id: "1"
      title: Financial Statements
    }
    {
      id: "2"
      title: MD&A
    }
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if c.Form() != "10-Q" || c.Len() != 2 {
		t.Errorf("loaded catalog form=%s len=%d", c.Form(), c.Len())
	}
	if c.Title("2") != "MD&A" {
		t.Errorf("title 2 = %q", c.Title("2"))
	}
}

func TestLoadFileRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, []byte("form = '10-K'"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("unsupported extension accepted")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
