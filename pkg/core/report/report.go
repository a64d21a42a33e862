// Package report accumulates per-filing outcomes for one extraction run and
// renders them as JSON run records and Markdown summaries.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"itemxtract/pkg/core/filing"
)

// Outcome is the per-filing diagnostic class.
type Outcome string

const (
	// OutcomeOK means the filing produced items; some may still be unresolved.
	OutcomeOK Outcome = "ok"
	// OutcomeSkipped means no table of contents was found; the filing was
	// passed over, not failed.
	OutcomeSkipped Outcome = "skipped_no_toc"
	// OutcomeFailed means an unexpected structural failure stopped this
	// filing. Other filings in the run continue.
	OutcomeFailed Outcome = "failed"
)

// FilingRecord is one filing's entry in the run record.
type FilingRecord struct {
	Filing     filing.FilingID `json:"filing"`
	Outcome    Outcome         `json:"outcome"`
	Items      []string        `json:"items,omitempty"`
	Unresolved []string        `json:"unresolved,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

// ItemCoverage counts how often one item id was extracted versus unresolved
// across the run.
type ItemCoverage struct {
	Extracted  int     `json:"extracted"`
	Unresolved int     `json:"unresolved"`
	Rate       float64 `json:"rate"`
}

// Run collects filing records. Safe for concurrent Add from worker
// goroutines.
type Run struct {
	ID         string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Records    []FilingRecord `json:"records"`

	mu sync.Mutex
}

// NewRun starts a run record with a fresh id.
func NewRun() *Run {
	return &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
}

// Add appends one filing record.
func (r *Run) Add(rec FilingRecord) {
	r.mu.Lock()
	r.Records = append(r.Records, rec)
	r.mu.Unlock()
}

// Finish stamps the run end time.
func (r *Run) Finish() {
	r.mu.Lock()
	r.FinishedAt = time.Now().UTC()
	r.mu.Unlock()
}

// Counts returns the outcome tallies.
func (r *Run) Counts() (ok, skipped, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.Records {
		switch rec.Outcome {
		case OutcomeOK:
			ok++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	return
}

// Coverage aggregates per-item extraction counts across all filings that
// produced output.
func (r *Run) Coverage() map[string]ItemCoverage {
	r.mu.Lock()
	defer r.mu.Unlock()

	cov := make(map[string]ItemCoverage)
	for _, rec := range r.Records {
		for _, id := range rec.Items {
			c := cov[id]
			c.Extracted++
			cov[id] = c
		}
		for _, id := range rec.Unresolved {
			c := cov[id]
			c.Unresolved++
			cov[id] = c
		}
	}
	for id, c := range cov {
		total := c.Extracted + c.Unresolved
		if total > 0 {
			c.Rate = float64(c.Extracted) / float64(total)
		}
		cov[id] = c
	}
	return cov
}

// SaveJSON writes the run record to dir as run_<id>.json.
func (r *Run) SaveJSON(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	r.mu.Lock()
	data, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("marshal run record: %w", err)
	}
	path := filepath.Join(dir, "run_"+r.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write run record: %w", err)
	}
	return path, nil
}

// Markdown renders the run as a human-readable summary.
func (r *Run) Markdown() string {
	ok, skipped, failed := r.Counts()
	cov := r.Coverage()

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Extraction Run %s\n\n", r.ID)
	fmt.Fprintf(&sb, "Started: %s\n\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "## Outcomes\n\n")
	fmt.Fprintf(&sb, "| Outcome | Count |\n|---|---|\n")
	fmt.Fprintf(&sb, "| ok | %d |\n| skipped (no TOC) | %d |\n| failed | %d |\n\n", ok, skipped, failed)

	if len(cov) > 0 {
		fmt.Fprintf(&sb, "## Item Coverage\n\n")
		fmt.Fprintf(&sb, "| Item | Extracted | Unresolved | Rate |\n|---|---|---|---|\n")
		ids := make([]string, 0, len(cov))
		for id := range cov {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			c := cov[id]
			fmt.Fprintf(&sb, "| %s | %d | %d | %.0f%% |\n", id, c.Extracted, c.Unresolved, c.Rate*100)
		}
		sb.WriteByte('\n')
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var failures []FilingRecord
	for _, rec := range r.Records {
		if rec.Outcome == OutcomeFailed {
			failures = append(failures, rec)
		}
	}
	if len(failures) > 0 {
		fmt.Fprintf(&sb, "## Failures\n\n")
		for _, rec := range failures {
			fmt.Fprintf(&sb, "- `%s` (%s): %s\n", rec.Filing.AccessionNumber, rec.Filing.Form, rec.Error)
		}
	}
	return sb.String()
}

// SaveMarkdown writes the summary next to the JSON record.
func (r *Run) SaveMarkdown(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, "run_"+r.ID+".md")
	if err := os.WriteFile(path, []byte(r.Markdown()), 0o644); err != nil {
		return "", fmt.Errorf("write run summary: %w", err)
	}
	return path, nil
}
