package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"itemxtract/pkg/api/extractapi"
	"itemxtract/pkg/core/ingest"
)

func main() {
	// Load environment variables
	godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	addr := ":8080"
	if v := os.Getenv("API_ADDR"); v != "" {
		addr = v
	}
	cacheDir := os.Getenv("CACHE_DIR")
	reportDir := os.Getenv("REPORT_DIR")
	if reportDir == "" {
		reportDir = "reports"
	}

	fetcher := ingest.NewFetcher(ingest.NewEDGARClient(), cacheDir, log)
	handler := extractapi.NewHandler(fetcher, reportDir, log)
	router := extractapi.NewRouter(handler)

	log.Info("API server starting", "addr", addr)
	fmt.Println("  - GET  /health")
	fmt.Println("  - POST /api/extract")
	fmt.Println("  - POST /api/structure")
	fmt.Println("  - GET  /api/reports/{id}")

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
