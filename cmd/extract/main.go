// Command extract runs batch item extraction over SEC filings.
//
// Example:
//
//	extract -tickers AAPL,MSFT -forms 10-K -years 2022,2023 -items 1,1A,7 -out ./output
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"itemxtract/pkg/core/catalog"
	"itemxtract/pkg/core/filing"
	"itemxtract/pkg/core/ingest"
	"itemxtract/pkg/core/output"
	"itemxtract/pkg/core/pipeline"
	"itemxtract/pkg/core/store"
)

func main() {
	godotenv.Load()

	var (
		tickers    = flag.String("tickers", "", "comma-separated ticker symbols")
		ciks       = flag.String("ciks", "", "comma-separated CIK numbers")
		forms      = flag.String("forms", "10-K", "comma-separated form types")
		years      = flag.String("years", "", "comma-separated fiscal years, empty = all")
		items      = flag.String("items", "", "comma-separated item ids, empty = whole catalog")
		outDir     = flag.String("out", "output", "output base directory")
		reportDir  = flag.String("reports", "reports", "run record directory")
		cacheDir   = flag.String("cache", "", "local HTML cache directory")
		catalogCfg = flag.String("catalog", "", "catalog override file (yaml or hjson)")
		workers    = flag.Int("workers", 4, "parallel documents")
		lookahead  = flag.Int("lookahead", ingest.DefaultLookaheadMonths, "months past fiscal year end to search for filings")
		structures = flag.Bool("structures", false, "also emit heading trees")
		saveHTML   = flag.Bool("save-html", false, "keep source documents on disk")
		useDB      = flag.Bool("db", false, "also upsert items into Postgres (DATABASE_URL)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	companies := append(splitList(*tickers), splitList(*ciks)...)
	if len(companies) == 0 {
		fmt.Fprintln(os.Stderr, "at least one of -tickers or -ciks is required")
		flag.Usage()
		os.Exit(2)
	}

	yearList, err := parseYears(*years)
	if err != nil {
		fatal(log, err)
	}

	var override filing.Catalog
	if *catalogCfg != "" {
		cat, err := catalog.LoadFile(*catalogCfg)
		if err != nil {
			fatal(log, err)
		}
		override = cat
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := ingest.NewFetcher(ingest.NewEDGARClient(), *cacheDir, log)

	jobs, err := collectJobs(ctx, fetcher, companies, splitList(*forms), yearList, *lookahead, log)
	if err != nil {
		fatal(log, err)
	}
	if len(jobs) == 0 {
		log.Warn("no filings matched the requested companies, forms and years")
		return
	}
	log.Info("starting extraction", "filings", len(jobs), "workers", *workers)

	orch := pipeline.NewOrchestrator(fetcher, output.NewFileStore(*outDir), log, pipeline.Options{
		Workers:         *workers,
		Items:           splitList(*items),
		BuildStructures: *structures,
		SaveHTML:        *saveHTML,
		Catalog:         override,
	})

	if *useDB {
		if err := store.InitDB(ctx); err != nil {
			fatal(log, err)
		}
		defer store.Close()
		repo := store.NewItemsRepo(store.GetPool())
		if err := repo.EnsureSchema(ctx); err != nil {
			fatal(log, err)
		}
		orch.SetSink(&dbSink{repo: repo})
	}

	run := orch.Run(ctx, jobs)

	if path, err := run.SaveJSON(*reportDir); err != nil {
		log.Error("failed to save run record", "error", err)
	} else {
		log.Info("run record saved", "path", path)
	}
	if path, err := run.SaveMarkdown(*reportDir); err != nil {
		log.Error("failed to save run summary", "error", err)
	} else {
		log.Info("run summary saved", "path", path)
	}

	if _, _, failed := run.Counts(); failed > 0 {
		os.Exit(1)
	}
}

// collectJobs resolves each company and lists its filings in the requested
// windows.
func collectJobs(ctx context.Context, fetcher *ingest.Fetcher, companies, forms []string, years []int, lookahead int, log *slog.Logger) ([]pipeline.Job, error) {
	var jobs []pipeline.Job
	for _, company := range companies {
		cik, err := fetcher.ResolveCIK(ctx, company)
		if err != nil {
			log.Error("company lookup failed", "company", company, "error", err)
			continue
		}
		filings, err := fetcher.FilingsForYears(ctx, cik, forms, years, lookahead)
		if err != nil {
			log.Error("filing listing failed", "company", company, "error", err)
			continue
		}
		filings = ingest.PreferAmendments(filings)
		ticker := ""
		if !isNumeric(company) {
			ticker = strings.ToUpper(company)
		}
		for _, f := range filings {
			jobs = append(jobs, pipeline.Job{Filing: f, Ticker: ticker})
		}
		log.Info("company resolved", "company", company, "cik", cik, "filings", len(filings))
	}
	return jobs, ctx.Err()
}

// dbSink adapts ItemsRepo to the pipeline sink interface.
type dbSink struct {
	repo *store.ItemsRepo
}

func (s *dbSink) SaveResult(ctx context.Context, res *filing.Result, trees map[string]*filing.StructureNode) error {
	return s.repo.SaveResult(ctx, res, trees)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseYears(s string) ([]int, error) {
	var out []int
	for _, part := range splitList(s) {
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		out = append(out, y)
	}
	return out, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func fatal(log *slog.Logger, err error) {
	log.Error(err.Error())
	os.Exit(1)
}
