// Package extractapi exposes the segmentation engine over HTTP.
package extractapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"itemxtract/pkg/core/catalog"
	"itemxtract/pkg/core/filing"
	"itemxtract/pkg/core/ingest"
	"itemxtract/pkg/core/report"
)

// Handler carries the engine and its collaborators for all endpoints.
type Handler struct {
	engine    *filing.Engine
	fetcher   *ingest.Fetcher
	reportDir string
	log       *slog.Logger
}

// NewHandler creates the API handler. fetcher may be nil; then requests must
// carry inline HTML. reportDir is where batch runs store their records.
func NewHandler(fetcher *ingest.Fetcher, reportDir string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		engine:    filing.NewEngine(log),
		fetcher:   fetcher,
		reportDir: reportDir,
		log:       log,
	}
}

// ExtractRequest asks for item extraction from one filing. Either HTML is
// inlined, or Ticker/CIK plus AccessionNumber identify a document to fetch.
type ExtractRequest struct {
	HTML            string   `json:"html,omitempty"`
	Ticker          string   `json:"ticker,omitempty"`
	CIK             string   `json:"cik,omitempty"`
	AccessionNumber string   `json:"accession_number,omitempty"`
	Form            string   `json:"form"`
	FiscalYear      int      `json:"fiscal_year,omitempty"`
	Items           []string `json:"items,omitempty"`
}

// StructureRequest asks for heading trees on top of an extraction.
type StructureRequest struct {
	ExtractRequest
	ItemID string `json:"item_id,omitempty"` // empty = all resolved items
}

// HandleExtract serves POST /api/extract.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	x, status, err := h.runExtraction(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	filterItems(x, req.Items)
	writeJSON(w, x.Result)
}

// HandleStructure serves POST /api/structure.
func (h *Handler) HandleStructure(w http.ResponseWriter, r *http.Request) {
	var req StructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	x, status, err := h.runExtraction(r.Context(), req.ExtractRequest)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	if req.ItemID != "" {
		tree, err := x.Structure(strings.ToUpper(req.ItemID))
		if err != nil {
			if errors.Is(err, filing.ErrItemUnresolved) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, tree)
		return
	}
	writeJSON(w, x.Structures())
}

// HandleReport serves GET /api/reports/{id}: the stored run record rendered
// as HTML.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request, runID string) {
	if h.reportDir == "" {
		http.Error(w, "report storage not configured", http.StatusNotFound)
		return
	}
	if !validRunID(runID) {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(filepath.Join(h.reportDir, "run_"+runID+".json"))
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	var run report.Run
	if err := json.Unmarshal(data, &run); err != nil {
		http.Error(w, "run record unreadable", http.StatusInternalServerError)
		return
	}

	var html strings.Builder
	if err := goldmark.Convert([]byte(run.Markdown()), &html); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html.String())
}

// HandleHealth serves GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// runExtraction resolves the document (inline or fetched) and runs the
// engine. The int return is the HTTP status to use on error.
func (h *Handler) runExtraction(ctx context.Context, req ExtractRequest) (*filing.Extraction, int, error) {
	html := req.HTML
	id := filing.FilingID{
		CIK:             req.CIK,
		Ticker:          strings.ToUpper(req.Ticker),
		AccessionNumber: req.AccessionNumber,
		Form:            req.Form,
		FiscalYear:      req.FiscalYear,
	}

	if html == "" {
		if h.fetcher == nil {
			return nil, http.StatusBadRequest, fmt.Errorf("request must include html")
		}
		fetched, filingMeta, err := h.fetchDocument(ctx, &id, req)
		if err != nil {
			return nil, http.StatusBadGateway, err
		}
		html = fetched
		if id.Form == "" {
			id.Form = filingMeta.FormType
		}
		if id.FiscalYear == 0 {
			id.FiscalYear = filingMeta.FiscalYear()
		}
	}
	if id.Form == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("request must include form")
	}

	cat, err := catalog.ForForm(id.Form)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	x, err := h.engine.Extract(html, cat, id)
	if err != nil {
		if errors.Is(err, filing.ErrNoTOC) {
			return nil, http.StatusUnprocessableEntity, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return x, 0, nil
}

// fetchDocument locates the filing on EDGAR when no inline HTML was given.
func (h *Handler) fetchDocument(ctx context.Context, id *filing.FilingID, req ExtractRequest) (string, ingest.Filing, error) {
	ident := req.CIK
	if ident == "" {
		ident = req.Ticker
	}
	if ident == "" || req.AccessionNumber == "" {
		return "", ingest.Filing{}, fmt.Errorf("request must include html, or a company identifier and accession_number")
	}

	cik, err := h.fetcher.ResolveCIK(ctx, ident)
	if err != nil {
		return "", ingest.Filing{}, err
	}
	id.CIK = cik

	filings, err := h.fetcher.FilingsForYears(ctx, cik, nil, nil, 0)
	if err != nil {
		return "", ingest.Filing{}, err
	}
	for _, f := range filings {
		if f.AccessionNumber == req.AccessionNumber {
			html, err := h.fetcher.FetchHTML(ctx, f)
			return html, f, err
		}
	}
	return "", ingest.Filing{}, fmt.Errorf("accession %s not found for CIK %s", req.AccessionNumber, cik)
}

func filterItems(x *filing.Extraction, items []string) {
	if len(items) == 0 {
		return
	}
	keep := make(map[string]bool, len(items))
	for _, id := range items {
		keep[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	for id := range x.Items {
		if !keep[id] {
			delete(x.Items, id)
		}
	}
}

func validRunID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && r != '-' {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
