// Package coverage reports how many operators have a usable harmonized
// record in an output tree.
package coverage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Report summarizes a scan of the extraction output tree.
type Report struct {
	Root         string   `json:"root" yaml:"root"`
	Total        int      `json:"total" yaml:"total"`
	Valid        int      `json:"valid" yaml:"valid"`
	Invalid      int      `json:"invalid" yaml:"invalid"`
	InvalidFiles []string `json:"invalid_files,omitempty" yaml:"invalid_files,omitempty"`
}

// Scan walks root recursively and inspects every file whose base name
// matches pattern (a filepath.Match glob). A file counts as valid when
// it parses as a non-empty JSON object.
func Scan(root, pattern string) (*Report, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	report := &Report{Root: root}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, _ := filepath.Match(pattern, d.Name())
		if !ok {
			return nil
		}

		report.Total++
		if isValidRecord(path) {
			report.Valid++
			return nil
		}
		report.Invalid++
		report.InvalidFiles = append(report.InvalidFiles, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(report.InvalidFiles)
	return report, nil
}

func isValidRecord(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return false
	}
	return len(record) > 0
}
