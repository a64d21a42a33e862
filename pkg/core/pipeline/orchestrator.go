// Package pipeline manages the end-to-end batch flow: fetch filing HTML,
// run the segmentation engine, persist items and structures, and record
// per-filing outcomes. Each document is processed on one goroutine; the pool
// fans out across documents only.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"itemxtract/pkg/core/catalog"
	"itemxtract/pkg/core/filing"
	"itemxtract/pkg/core/ingest"
	"itemxtract/pkg/core/output"
	"itemxtract/pkg/core/report"
)

// HTMLFetcher retrieves the primary document for a filing.
// Implementations may fetch from live SEC EDGAR or a local cache.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, f ingest.Filing) (string, error)
}

// ItemSink persists extraction output beyond the file store, e.g. Postgres.
type ItemSink interface {
	SaveResult(ctx context.Context, res *filing.Result, trees map[string]*filing.StructureNode) error
}

// Options tunes one batch run.
type Options struct {
	Workers         int            // parallel documents, default 1
	Items           []string       // item id subset, empty = whole catalog
	BuildStructures bool           // also emit heading trees
	SaveHTML        bool           // keep the source document on disk
	Catalog         filing.Catalog // override; nil = built-in per form
}

// Job is one filing to process.
type Job struct {
	Filing ingest.Filing
	Ticker string
}

// Orchestrator wires the fetcher, engine and stores together.
type Orchestrator struct {
	fetcher HTMLFetcher
	engine  *filing.Engine
	files   *output.FileStore
	sink    ItemSink
	opts    Options
	log     *slog.Logger

	itemSet map[string]bool
}

// NewOrchestrator creates an orchestrator. files may be nil to skip disk
// output.
func NewOrchestrator(fetcher HTMLFetcher, files *output.FileStore, log *slog.Logger, opts Options) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	var itemSet map[string]bool
	if len(opts.Items) > 0 {
		itemSet = make(map[string]bool, len(opts.Items))
		for _, id := range opts.Items {
			itemSet[normalizeItemID(id)] = true
		}
	}
	return &Orchestrator{
		fetcher: fetcher,
		engine:  filing.NewEngine(log),
		files:   files,
		opts:    opts,
		log:     log,
		itemSet: itemSet,
	}
}

// SetSink injects an additional persistence target (e.g. for testing or a
// database repository).
func (o *Orchestrator) SetSink(sink ItemSink) {
	o.sink = sink
}

// Run processes all jobs and returns the finished run record. A canceled
// context stops feeding new jobs; in-flight documents finish.
func (o *Orchestrator) Run(ctx context.Context, jobs []Job) *report.Run {
	run := report.NewRun()
	jobCh := make(chan Job)

	var wg sync.WaitGroup
	for i := 0; i < o.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				run.Add(o.processOne(ctx, job))
			}
		}()
	}

feed:
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case jobCh <- job:
		}
	}
	close(jobCh)
	wg.Wait()
	run.Finish()

	ok, skipped, failed := run.Counts()
	o.log.Info("run complete", "run_id", run.ID, "ok", ok, "skipped", skipped, "failed", failed)
	return run
}

// processOne handles a single filing end to end. Every failure mode is
// converted into a record; nothing here stops the batch.
func (o *Orchestrator) processOne(ctx context.Context, job Job) report.FilingRecord {
	start := time.Now()
	id := filing.FilingID{
		CIK:             job.Filing.CIK,
		Ticker:          job.Ticker,
		AccessionNumber: job.Filing.AccessionNumber,
		Form:            job.Filing.FormType,
		FiscalYear:      job.Filing.FiscalYear(),
	}
	rec := report.FilingRecord{Filing: id}
	defer func() {
		rec.DurationMS = time.Since(start).Milliseconds()
	}()

	fail := func(err error) report.FilingRecord {
		rec.Outcome = report.OutcomeFailed
		rec.Error = err.Error()
		o.log.Error("filing failed", "accession", id.AccessionNumber, "error", err)
		return rec
	}

	cat := o.opts.Catalog
	if cat == nil {
		builtin, err := catalog.ForForm(job.Filing.FormType)
		if err != nil {
			return fail(err)
		}
		cat = builtin
	}

	html, err := o.fetcher.FetchHTML(ctx, job.Filing)
	if err != nil {
		return fail(fmt.Errorf("fetch: %w", err))
	}

	x, err := o.engine.Extract(html, cat, id)
	if err != nil {
		if errors.Is(err, filing.ErrNoTOC) {
			rec.Outcome = report.OutcomeSkipped
			o.log.Info("filing skipped, no TOC", "accession", id.AccessionNumber)
			return rec
		}
		return fail(err)
	}

	o.filterItems(x)

	var trees map[string]*filing.StructureNode
	if o.opts.BuildStructures {
		trees = x.Structures()
		for itemID := range trees {
			if _, kept := x.Items[itemID]; !kept {
				delete(trees, itemID)
			}
		}
	}

	if err := o.persist(ctx, x, trees, html); err != nil {
		return fail(err)
	}

	rec.Outcome = report.OutcomeOK
	rec.Items = sortedKeys(x.Items)
	rec.Unresolved = x.Unresolved
	return rec
}

// filterItems trims the extraction to the requested item subset.
func (o *Orchestrator) filterItems(x *filing.Extraction) {
	if o.itemSet == nil {
		return
	}
	for itemID := range x.Items {
		if !o.itemSet[itemID] {
			delete(x.Items, itemID)
		}
	}
	kept := x.Unresolved[:0]
	for _, id := range x.Unresolved {
		if o.itemSet[id] {
			kept = append(kept, id)
		}
	}
	x.Unresolved = kept
}

func (o *Orchestrator) persist(ctx context.Context, x *filing.Extraction, trees map[string]*filing.StructureNode, html string) error {
	if o.files != nil {
		if err := o.files.SaveResult(&x.Result); err != nil {
			return err
		}
		for itemID, tree := range trees {
			if err := o.files.SaveStructure(x.Filing, itemID, tree); err != nil {
				return err
			}
		}
		if o.opts.SaveHTML {
			if err := o.files.SaveHTML(x.Filing, html); err != nil {
				return err
			}
		}
	}
	if o.sink != nil {
		if err := o.sink.SaveResult(ctx, &x.Result, trees); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
	}
	return nil
}

func sortedKeys(m map[string]filing.ExtractedItem) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeItemID(id string) string {
	out := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c != ' ' {
			out = append(out, c)
		}
	}
	return string(out)
}
