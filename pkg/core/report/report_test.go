package report

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"

	"itemxtract/pkg/core/filing"
)

func sampleRun() *Run {
	r := NewRun()
	r.Add(FilingRecord{
		Filing:  filing.FilingID{CIK: "1", AccessionNumber: "acc-1", Form: "10-K", FiscalYear: 2023},
		Outcome: OutcomeOK,
		Items:   []string{"1", "1A", "7"},
	})
	r.Add(FilingRecord{
		Filing:     filing.FilingID{CIK: "2", AccessionNumber: "acc-2", Form: "10-K", FiscalYear: 2023},
		Outcome:    OutcomeOK,
		Items:      []string{"1", "7"},
		Unresolved: []string{"1A"},
	})
	r.Add(FilingRecord{
		Filing:  filing.FilingID{CIK: "3", AccessionNumber: "acc-3", Form: "10-K"},
		Outcome: OutcomeSkipped,
	})
	r.Add(FilingRecord{
		Filing:  filing.FilingID{CIK: "4", AccessionNumber: "acc-4", Form: "10-K"},
		Outcome: OutcomeFailed,
		Error:   "structural failure: nil node",
	})
	r.Finish()
	return r
}

func TestRunCountsAndCoverage(t *testing.T) {
	r := sampleRun()

	ok, skipped, failed := r.Counts()
	if ok != 2 || skipped != 1 || failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", ok, skipped, failed)
	}

	cov := r.Coverage()
	if c := cov["1"]; c.Extracted != 2 || c.Unresolved != 0 || c.Rate != 1.0 {
		t.Errorf("coverage 1 = %+v", c)
	}
	if c := cov["1A"]; c.Extracted != 1 || c.Unresolved != 1 || c.Rate != 0.5 {
		t.Errorf("coverage 1A = %+v", c)
	}
}

func TestRunMarkdown(t *testing.T) {
	md := sampleRun().Markdown()
	for _, want := range []string{"# Extraction Run", "| ok | 2 |", "| 1A | 1 | 1 | 50% |", "acc-4", "structural failure"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRunSaveJSON(t *testing.T) {
	r := sampleRun()
	dir := t.TempDir()
	path, err := r.SaveJSON(dir)
	if err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var loaded Run
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("run record not valid json: %v", err)
	}
	if loaded.ID != r.ID || len(loaded.Records) != 4 {
		t.Errorf("round trip = id %s, %d records", loaded.ID, len(loaded.Records))
	}
}

func TestRunConcurrentAdd(t *testing.T) {
	r := NewRun()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add(FilingRecord{Outcome: OutcomeOK, Items: []string{"1"}})
		}()
	}
	wg.Wait()
	if len(r.Records) != 20 {
		t.Errorf("records = %d, want 20", len(r.Records))
	}
	if c := r.Coverage()["1"]; c.Extracted != 20 {
		t.Errorf("coverage = %+v", c)
	}
}
