// Package ingest provides SEC EDGAR API integration for locating and fetching
// company filings.
// API Documentation: https://www.sec.gov/developer
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// SEC EDGAR API endpoints
	SECSubmissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	SECFilingURL      = "https://www.sec.gov/Archives/edgar/data/%s/%s"
	SECTickerMapURL   = "https://www.sec.gov/files/company_tickers.json"

	// Default User-Agent per SEC guidelines; override with EDGAR_USER_AGENT.
	defaultUserAgent = "ItemXtract/1.0 (contact@example.com)"

	// SEC allows at most 10 requests per second.
	minRequestInterval = 110 * time.Millisecond

	maxRetries = 3
)

// =============================================================================
// SEC EDGAR DATA TYPES
// =============================================================================

// SECCompanyInfo represents the top-level company submission response.
type SECCompanyInfo struct {
	CIK            string     `json:"cik"`
	EntityType     string     `json:"entityType"`
	SIC            string     `json:"sic"`
	SICDescription string     `json:"sicDescription"`
	Name           string     `json:"name"`
	Tickers        []string   `json:"tickers"`
	Exchanges      []string   `json:"exchanges"`
	Filings        SECFilings `json:"filings"`
}

// SECFilings contains recent and older filing lists.
type SECFilings struct {
	Recent SECRecentFilings `json:"recent"`
}

// SECRecentFilings holds arrays of filing attributes (parallel arrays).
type SECRecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"` // e.g., "0000037996-24-000012"
	FilingDate      []string `json:"filingDate"`      // e.g., "2024-02-06"
	ReportDate      []string `json:"reportDate"`      // Fiscal period end
	Form            []string `json:"form"`            // "10-K", "10-Q", "8-K"
	PrimaryDocument []string `json:"primaryDocument"` // filename
	Size            []int    `json:"size"`            // bytes
}

// Filing represents a single SEC filing (denormalized from parallel arrays).
type Filing struct {
	CIK             string    `json:"cik"`
	AccessionNumber string    `json:"accession_number"`
	FilingDate      time.Time `json:"filing_date"`
	ReportDate      time.Time `json:"report_date"`
	FormType        string    `json:"form_type"`
	PrimaryDocument string    `json:"primary_document"`
	Size            int       `json:"size"`
	URL             string    `json:"url"` // Constructed download URL
}

// FiscalYear derives the filing's fiscal year from its report period end.
func (f Filing) FiscalYear() int {
	if f.ReportDate.IsZero() {
		return f.FilingDate.Year()
	}
	return f.ReportDate.Year()
}

// =============================================================================
// SEC EDGAR CLIENT
// =============================================================================

// EDGARClient handles SEC EDGAR API requests. It spaces requests to stay
// inside SEC's rate limit and retries timed-out calls, so one client should
// be shared across workers.
type EDGARClient struct {
	httpClient *http.Client
	userAgent  string

	mu       sync.Mutex
	lastCall time.Time
}

// NewEDGARClient creates a new SEC EDGAR API client.
func NewEDGARClient() *EDGARClient {
	ua := os.Getenv("EDGAR_USER_AGENT")
	if ua == "" {
		ua = defaultUserAgent
	}
	return &EDGARClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: ua,
	}
}

// throttle blocks until the minimum request interval has elapsed.
func (c *EDGARClient) throttle() {
	c.mu.Lock()
	wait := minRequestInterval - time.Since(c.lastCall)
	if wait > 0 {
		time.Sleep(wait)
	}
	c.lastCall = time.Now()
	c.mu.Unlock()
}

// get performs one throttled GET with retry on timeouts and 429s.
func (c *EDGARClient) get(ctx context.Context, url, accept string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		c.throttle()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", accept)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isTimeout(err) && ctx.Err() == nil {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("SEC request failed: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("SEC returned status %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("SEC returned status %d for %s", resp.StatusCode, url)
		case readErr != nil:
			lastErr = readErr
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("SEC request failed after %d attempts: %w", maxRetries, lastErr)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// FetchCompanyInfo retrieves company submission data from SEC EDGAR.
//
// CIK should be zero-padded to 10 digits (e.g., "0000037996" for Ford).
// If not padded, this function will pad it automatically.
func (c *EDGARClient) FetchCompanyInfo(ctx context.Context, cik string) (*SECCompanyInfo, error) {
	cik = PadCIK(cik)

	body, err := c.get(ctx, fmt.Sprintf(SECSubmissionsURL, cik), "application/json")
	if err != nil {
		return nil, err
	}

	var info SECCompanyInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse SEC response: %w", err)
	}
	if info.CIK == "" {
		info.CIK = strings.TrimLeft(cik, "0")
	}
	return &info, nil
}

// GetFilings extracts and returns filings filtered by form type.
//
// formTypes: "10-K", "10-Q", "8-K", etc. Pass nil for all types.
// limit: Maximum number of filings to return (0 = no limit).
func (c *EDGARClient) GetFilings(info *SECCompanyInfo, formTypes []string, limit int) []Filing {
	recent := info.Filings.Recent
	filings := make([]Filing, 0)

	formTypeSet := make(map[string]bool)
	for _, ft := range formTypes {
		formTypeSet[strings.ToUpper(ft)] = true
	}

	for i := range recent.AccessionNumber {
		if len(formTypes) > 0 && !formTypeSet[strings.ToUpper(recent.Form[i])] {
			continue
		}

		filingDate, _ := time.Parse("2006-01-02", recent.FilingDate[i])
		reportDate, _ := time.Parse("2006-01-02", recent.ReportDate[i])

		// Format: https://www.sec.gov/Archives/edgar/data/{cik}/{accession-no-dashes}/{document}
		accessionNoDashes := strings.ReplaceAll(recent.AccessionNumber[i], "-", "")
		downloadURL := fmt.Sprintf(SECFilingURL, info.CIK, accessionNoDashes+"/"+recent.PrimaryDocument[i])

		filings = append(filings, Filing{
			CIK:             info.CIK,
			AccessionNumber: recent.AccessionNumber[i],
			FilingDate:      filingDate,
			ReportDate:      reportDate,
			FormType:        recent.Form[i],
			PrimaryDocument: recent.PrimaryDocument[i],
			Size:            recent.Size[i],
			URL:             downloadURL,
		})

		if limit > 0 && len(filings) >= limit {
			break
		}
	}

	return filings
}

// FetchFilingHTML downloads one filing's primary document.
func (c *EDGARClient) FetchFilingHTML(ctx context.Context, filing Filing) (string, error) {
	if filing.URL == "" {
		return "", fmt.Errorf("filing %s has no document URL", filing.AccessionNumber)
	}
	body, err := c.get(ctx, filing.URL, "text/html")
	if err != nil {
		return "", fmt.Errorf("fetch filing %s: %w", filing.AccessionNumber, err)
	}
	return string(body), nil
}

// LookupCIKByTicker finds the CIK for a given ticker symbol via SEC's
// ticker mapping file.
func (c *EDGARClient) LookupCIKByTicker(ctx context.Context, ticker string) (string, error) {
	body, err := c.get(ctx, SECTickerMapURL, "application/json")
	if err != nil {
		return "", fmt.Errorf("failed to fetch ticker mapping: %w", err)
	}

	// Response structure: { "0": {"cik_str": 320193, "ticker": "AAPL", "title": "..."}, ... }
	var mapping map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &mapping); err != nil {
		return "", fmt.Errorf("failed to parse ticker mapping: %w", err)
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, entry := range mapping {
		if entry.Ticker == ticker {
			return fmt.Sprintf("%010d", entry.CIK), nil
		}
	}
	return "", fmt.Errorf("ticker %s not found in SEC database", ticker)
}

// PadCIK zero-pads a CIK to the 10 digits EDGAR URLs expect.
func PadCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(strings.TrimSpace(cik), "0"))
}
