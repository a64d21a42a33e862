// Package ingest provides SEC EDGAR API integration and content fetching.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLookaheadMonths is how far past a fiscal year's end the filing
// window extends. Annual reports for fiscal year N are normally filed in the
// first half of year N+1.
const DefaultLookaheadMonths = 6

// Fetcher locates filings for requested fiscal years and downloads their
// primary documents, with an optional local HTML cache.
type Fetcher struct {
	client   *EDGARClient
	cacheDir string
	log      *slog.Logger
}

// NewFetcher creates a fetcher. If cacheDir is non-empty, downloaded HTML is
// cached there and reused on later runs.
func NewFetcher(client *EDGARClient, cacheDir string, log *slog.Logger) *Fetcher {
	if client == nil {
		client = NewEDGARClient()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{client: client, cacheDir: cacheDir, log: log}
}

// FiscalWindow returns the filing-date range associated with one fiscal
// year: from January 1 of the year through the last day of the
// (12+lookahead)-th month, so reports filed early the following year are
// still attributed to the year they cover.
func FiscalWindow(year, lookaheadMonths int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 12+lookaheadMonths, 0).AddDate(0, 0, -1)
	return start, end
}

// FilingsForYears returns the company's filings of the given forms whose
// filing dates fall inside any requested fiscal year's window. Years may be
// empty, meaning no date filtering.
func (f *Fetcher) FilingsForYears(ctx context.Context, cik string, forms []string, years []int, lookaheadMonths int) ([]Filing, error) {
	info, err := f.client.FetchCompanyInfo(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("company %s: %w", cik, err)
	}
	all := f.client.GetFilings(info, forms, 0)
	if len(years) == 0 {
		return all, nil
	}

	var out []Filing
	for _, filing := range all {
		for _, year := range years {
			start, end := FiscalWindow(year, lookaheadMonths)
			if !filing.FilingDate.Before(start) && !filing.FilingDate.After(end) {
				out = append(out, filing)
				break
			}
		}
	}
	return out, nil
}

// PreferAmendments collapses filings that cover the same fiscal year with
// the same base form, keeping the most recently filed one. A 10-K/A filed
// after its 10-K supersedes it.
func PreferAmendments(filings []Filing) []Filing {
	type key struct {
		form string
		year int
	}
	best := make(map[key]int)
	var order []key
	for i, f := range filings {
		k := key{form: strings.TrimSuffix(strings.ToUpper(f.FormType), "/A"), year: f.FiscalYear()}
		j, seen := best[k]
		if !seen {
			best[k] = i
			order = append(order, k)
			continue
		}
		if f.FilingDate.After(filings[j].FilingDate) {
			best[k] = i
		}
	}
	out := make([]Filing, 0, len(order))
	for _, k := range order {
		out = append(out, filings[best[k]])
	}
	return out
}

// FetchHTML downloads a filing's primary document, consulting the cache
// first. Cached files below a sanity threshold are refetched; truncated
// downloads must not poison later runs.
func (f *Fetcher) FetchHTML(ctx context.Context, filing Filing) (string, error) {
	cachePath := f.cachePath(filing)
	if cachePath != "" {
		if content, err := os.ReadFile(cachePath); err == nil && len(content) > 1024 {
			f.log.Debug("cache hit", "accession", filing.AccessionNumber)
			return string(content), nil
		}
	}

	html, err := f.client.FetchFilingHTML(ctx, filing)
	if err != nil {
		return "", err
	}

	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
			if writeErr := os.WriteFile(cachePath, []byte(html), 0o644); writeErr != nil {
				f.log.Warn("cache write failed", "path", cachePath, "error", writeErr)
			}
		}
	}
	return html, nil
}

func (f *Fetcher) cachePath(filing Filing) string {
	if f.cacheDir == "" {
		return ""
	}
	name := fmt.Sprintf("%s_%s.htm",
		strings.TrimLeft(filing.CIK, "0"),
		strings.ReplaceAll(filing.AccessionNumber, "-", ""))
	return filepath.Join(f.cacheDir, "html", name)
}

// ResolveCIK turns a ticker or numeric CIK string into a padded CIK.
func (f *Fetcher) ResolveCIK(ctx context.Context, tickerOrCIK string) (string, error) {
	s := strings.TrimSpace(tickerOrCIK)
	if s == "" {
		return "", fmt.Errorf("empty company identifier")
	}
	if isDigits(s) {
		return PadCIK(s), nil
	}
	cik, err := f.client.LookupCIKByTicker(ctx, s)
	if err != nil {
		return "", err
	}
	return cik, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
