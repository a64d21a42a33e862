// Package output persists extraction results to a predictable on-disk layout:
//
//	<base>/<cik>/<fiscal-year>/<form>/item_<id>.json
//	<base>/<cik>/<fiscal-year>/<form>/structure_<id>.json
//	<base>/<cik>/<fiscal-year>/<form>/filing.htm
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"itemxtract/pkg/core/filing"
)

// FileStore writes extraction artifacts under a base directory.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// Dir returns the directory for one filing, creating nothing.
func (s *FileStore) Dir(id filing.FilingID) string {
	cik := strings.TrimLeft(id.CIK, "0")
	if cik == "" {
		cik = "unknown"
	}
	year := "unknown"
	if id.FiscalYear > 0 {
		year = fmt.Sprintf("%d", id.FiscalYear)
	}
	form := strings.ReplaceAll(id.Form, "/", "-")
	if form == "" {
		form = "unknown"
	}
	return filepath.Join(s.baseDir, cik, year, form)
}

// SaveResult writes one JSON file per extracted item.
func (s *FileStore) SaveResult(res *filing.Result) error {
	dir := s.Dir(res.Filing)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for itemID, item := range res.Items {
		path := filepath.Join(dir, itemFileName(itemID))
		if err := writeJSON(path, item); err != nil {
			return fmt.Errorf("save item %s: %w", itemID, err)
		}
	}
	return nil
}

// SaveStructure writes one item's heading tree next to its item file.
func (s *FileStore) SaveStructure(id filing.FilingID, itemID string, tree *filing.StructureNode) error {
	dir := s.Dir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, structureFileName(itemID))
	if err := writeJSON(path, tree); err != nil {
		return fmt.Errorf("save structure %s: %w", itemID, err)
	}
	return nil
}

// SaveHTML keeps the source document alongside the extraction for replay.
func (s *FileStore) SaveHTML(id filing.FilingID, html string) error {
	dir := s.Dir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "filing.htm"), []byte(html), 0o644)
}

func itemFileName(itemID string) string {
	return "item_" + strings.ToLower(itemID) + ".json"
}

func structureFileName(itemID string) string {
	return "structure_" + strings.ToLower(itemID) + ".json"
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
