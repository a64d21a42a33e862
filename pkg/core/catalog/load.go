package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"
)

// fileSpec is the on-disk catalog shape for both YAML and HJSON overrides.
type fileSpec struct {
	Form  string `json:"form" yaml:"form"`
	Items []Item `json:"items" yaml:"items"`
}

// LoadFile reads a catalog override from disk, dispatching on extension.
// Supported: .yaml/.yml and .hjson/.json.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".hjson", ".json":
		return parseHJSON(data)
	}
	return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
}

func parseYAML(data []byte) (*Catalog, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	return fromSpec(spec)
}

func parseHJSON(data []byte) (*Catalog, error) {
	var spec fileSpec
	if err := hjson.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse catalog hjson: %w", err)
	}
	return fromSpec(spec)
}

func fromSpec(spec fileSpec) (*Catalog, error) {
	if strings.TrimSpace(spec.Form) == "" {
		return nil, fmt.Errorf("catalog file missing form")
	}
	if len(spec.Items) == 0 {
		return nil, fmt.Errorf("catalog file for %s lists no items", spec.Form)
	}
	return New(spec.Form, spec.Items), nil
}
