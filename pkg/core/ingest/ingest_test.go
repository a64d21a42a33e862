package ingest

import (
	"context"
	"testing"
	"time"
)

func TestFiscalWindow(t *testing.T) {
	cases := []struct {
		year      int
		lookahead int
		wantStart string
		wantEnd   string
	}{
		{2023, 6, "2023-01-01", "2024-06-30"},
		{2023, 0, "2023-01-01", "2023-12-31"},
		{2020, 3, "2020-01-01", "2021-03-31"},
	}
	for _, c := range cases {
		start, end := FiscalWindow(c.year, c.lookahead)
		if got := start.Format("2006-01-02"); got != c.wantStart {
			t.Errorf("FiscalWindow(%d,%d) start = %s, want %s", c.year, c.lookahead, got, c.wantStart)
		}
		if got := end.Format("2006-01-02"); got != c.wantEnd {
			t.Errorf("FiscalWindow(%d,%d) end = %s, want %s", c.year, c.lookahead, got, c.wantEnd)
		}
	}
}

func testCompanyInfo() *SECCompanyInfo {
	return &SECCompanyInfo{
		CIK:  "320193",
		Name: "Test Corp",
		Filings: SECFilings{
			Recent: SECRecentFilings{
				AccessionNumber: []string{"0000320193-24-000001", "0000320193-23-000002", "0000320193-23-000003"},
				FilingDate:      []string{"2024-02-01", "2023-11-01", "2023-02-03"},
				ReportDate:      []string{"2023-12-30", "2023-09-30", "2022-12-31"},
				Form:            []string{"10-K", "10-Q", "10-K"},
				PrimaryDocument: []string{"a.htm", "b.htm", "c.htm"},
				Size:            []int{100, 50, 90},
			},
		},
	}
}

func TestGetFilingsFilterAndURL(t *testing.T) {
	client := NewEDGARClient()
	filings := client.GetFilings(testCompanyInfo(), []string{"10-K"}, 0)
	if len(filings) != 2 {
		t.Fatalf("got %d filings, want 2", len(filings))
	}
	first := filings[0]
	if first.AccessionNumber != "0000320193-24-000001" {
		t.Errorf("accession = %s", first.AccessionNumber)
	}
	wantURL := "https://www.sec.gov/Archives/edgar/data/320193/000032019324000001/a.htm"
	if first.URL != wantURL {
		t.Errorf("url = %s, want %s", first.URL, wantURL)
	}
	if first.FiscalYear() != 2023 {
		t.Errorf("fiscal year = %d, want 2023", first.FiscalYear())
	}

	limited := client.GetFilings(testCompanyInfo(), nil, 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored: got %d", len(limited))
	}
}

func TestFilingsForYearsWindow(t *testing.T) {
	// Window logic only; skip the network call by filtering directly.
	client := NewEDGARClient()
	all := client.GetFilings(testCompanyInfo(), []string{"10-K"}, 0)

	var inWindow []Filing
	start, end := FiscalWindow(2023, DefaultLookaheadMonths)
	for _, f := range all {
		if !f.FilingDate.Before(start) && !f.FilingDate.After(end) {
			inWindow = append(inWindow, f)
		}
	}
	// Both 10-Ks filed 2024-02-01 and 2023-02-03 land inside the 2023 window;
	// the 2023-02-03 filing covers fiscal 2022 but was filed within range.
	if len(inWindow) != 2 {
		t.Errorf("got %d filings in window, want 2", len(inWindow))
	}
}

func TestPadCIK(t *testing.T) {
	cases := map[string]string{
		"320193":      "0000320193",
		"0000320193":  "0000320193",
		" 37996 ":     "0000037996",
		"00000037996": "0000037996",
	}
	for in, want := range cases {
		if got := PadCIK(in); got != want {
			t.Errorf("PadCIK(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveCIKNumericShortCircuit(t *testing.T) {
	f := NewFetcher(nil, "", nil)
	got, err := f.ResolveCIK(context.Background(), "320193")
	if err != nil {
		t.Fatalf("ResolveCIK failed: %v", err)
	}
	if got != "0000320193" {
		t.Errorf("cik = %q", got)
	}
}

func TestThrottleSpacing(t *testing.T) {
	c := NewEDGARClient()
	startAt := time.Now()
	c.throttle()
	c.throttle()
	if elapsed := time.Since(startAt); elapsed < minRequestInterval {
		t.Errorf("second call ran after %v, want at least %v", elapsed, minRequestInterval)
	}
}

func TestPreferAmendments(t *testing.T) {
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	filings := []Filing{
		{AccessionNumber: "0001-23-000001", FormType: "10-K", FilingDate: day("2023-02-15"), ReportDate: day("2022-12-31")},
		{AccessionNumber: "0001-23-000002", FormType: "10-K/A", FilingDate: day("2023-05-01"), ReportDate: day("2022-12-31")},
		{AccessionNumber: "0001-22-000001", FormType: "10-K", FilingDate: day("2022-02-10"), ReportDate: day("2021-12-31")},
	}

	got := PreferAmendments(filings)
	if len(got) != 2 {
		t.Fatalf("expected 2 filings after amendment preference, got %d", len(got))
	}
	if got[0].AccessionNumber != "0001-23-000002" {
		t.Errorf("fiscal 2022 should resolve to the amendment, got %s", got[0].AccessionNumber)
	}
	if got[1].AccessionNumber != "0001-22-000001" {
		t.Errorf("fiscal 2021 filing lost, got %s", got[1].AccessionNumber)
	}
}
