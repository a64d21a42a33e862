package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"itemxtract/pkg/core/filing"
	"itemxtract/pkg/core/ingest"
	"itemxtract/pkg/core/output"
	"itemxtract/pkg/core/report"
)

const goodFilingHTML = `
<html><body>
<table>
  <tr><td>Item 1.</td><td><a href="#s1">Business</a></td><td>3</td></tr>
  <tr><td>Item 1A.</td><td><a href="#s1a">Risk Factors</a></td><td>20</td></tr>
  <tr><td>Item 3.</td><td><a href="#s3">Legal Proceedings</a></td><td>40</td></tr>
</table>
<a name="s1"></a>
<p style="font-weight:bold">Item 1. Business</p>
<p>We sell widgets.</p>
<a name="s1a"></a>
<p style="font-weight:bold">Item 1A. Risk Factors</p>
<p>Widgets may fail.</p>
<a name="s3"></a>
<p style="font-weight:bold">Item 3. Legal Proceedings</p>
<p>None.</p>
<p>SIGNATURES</p>
</body></html>`

type fakeFetcher struct {
	htmlByAccession map[string]string
}

func (f *fakeFetcher) FetchHTML(_ context.Context, filing ingest.Filing) (string, error) {
	html, ok := f.htmlByAccession[filing.AccessionNumber]
	if !ok {
		return "", fmt.Errorf("no document for %s", filing.AccessionNumber)
	}
	return html, nil
}

type captureSink struct {
	mu      sync.Mutex
	results []*filing.Result
}

func (s *captureSink) SaveResult(_ context.Context, res *filing.Result, _ map[string]*filing.StructureNode) error {
	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
	return nil
}

func testJob(accession string) Job {
	return Job{
		Filing: ingest.Filing{
			CIK:             "320193",
			AccessionNumber: accession,
			FormType:        "10-K",
			ReportDate:      time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC),
		},
		Ticker: "AAPL",
	}
}

func TestOrchestratorRun(t *testing.T) {
	base := t.TempDir()
	fetcher := &fakeFetcher{htmlByAccession: map[string]string{
		"acc-good": goodFilingHTML,
		"acc-flat": `<html><body><p>cover letter only</p></body></html>`,
	}}
	sink := &captureSink{}

	o := NewOrchestrator(fetcher, output.NewFileStore(base), nil, Options{Workers: 2, BuildStructures: true})
	o.SetSink(sink)

	run := o.Run(context.Background(), []Job{
		testJob("acc-good"),
		testJob("acc-flat"),
		testJob("acc-missing"),
	})

	ok, skipped, failed := run.Counts()
	if ok != 1 || skipped != 1 || failed != 1 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/1: %+v", ok, skipped, failed, run.Records)
	}

	// Disk layout for the successful filing.
	dir := filepath.Join(base, "320193", "2023", "10-K")
	for _, name := range []string{"item_1.json", "item_1a.json", "item_3.json", "structure_1.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	if len(sink.results) != 1 {
		t.Fatalf("sink got %d results", len(sink.results))
	}
	if len(sink.results[0].Items) != 3 {
		t.Errorf("sink items = %d, want 3", len(sink.results[0].Items))
	}
}

func TestOrchestratorItemFilter(t *testing.T) {
	fetcher := &fakeFetcher{htmlByAccession: map[string]string{"acc-good": goodFilingHTML}}
	sink := &captureSink{}
	o := NewOrchestrator(fetcher, nil, nil, Options{Items: []string{"1a"}})
	o.SetSink(sink)

	run := o.Run(context.Background(), []Job{testJob("acc-good")})
	if ok, _, _ := run.Counts(); ok != 1 {
		t.Fatalf("run = %+v", run.Records)
	}
	res := sink.results[0]
	if len(res.Items) != 1 {
		t.Fatalf("items = %v", res.Items)
	}
	if _, ok := res.Items["1A"]; !ok {
		t.Errorf("case-folded filter missed 1A: %v", res.Items)
	}
}

func TestOrchestratorUnsupportedForm(t *testing.T) {
	fetcher := &fakeFetcher{htmlByAccession: map[string]string{}}
	o := NewOrchestrator(fetcher, nil, nil, Options{})
	job := testJob("acc-good")
	job.Filing.FormType = "8-K"
	run := o.Run(context.Background(), []Job{job})
	if _, _, failed := run.Counts(); failed != 1 {
		t.Errorf("records = %+v", run.Records)
	}
}

func TestOrchestratorRecordsUnresolved(t *testing.T) {
	html := `
<html><body>
<table>
  <tr><td>Item 1.</td><td><a href="#s1">Business</a></td><td>3</td></tr>
  <tr><td>Item 1A.</td><td><a href="#gone">Risk Factors</a></td><td>20</td></tr>
  <tr><td>Item 3.</td><td><a href="#s3">Legal Proceedings</a></td><td>40</td></tr>
</table>
<a name="s1"></a>
<p style="font-weight:bold">Item 1. Business</p>
<p>We sell widgets.</p>
<a name="s3"></a>
<p style="font-weight:bold">Item 3. Legal Proceedings</p>
<p>None.</p>
</body></html>`
	fetcher := &fakeFetcher{htmlByAccession: map[string]string{"acc-u": html}}
	o := NewOrchestrator(fetcher, nil, nil, Options{})
	run := o.Run(context.Background(), []Job{testJob("acc-u")})

	if len(run.Records) != 1 {
		t.Fatalf("records = %d", len(run.Records))
	}
	rec := run.Records[0]
	if rec.Outcome != report.OutcomeOK {
		t.Fatalf("outcome = %s (%s)", rec.Outcome, rec.Error)
	}
	if len(rec.Unresolved) != 1 || rec.Unresolved[0] != "1A" {
		t.Errorf("unresolved = %v", rec.Unresolved)
	}
}
