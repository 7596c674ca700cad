// Package home manages the elcomtarif home directory layout.
//
// Every artifact the pipeline produces lives at a deterministic path under
// this directory, which is what makes re-runs idempotent: a stage checks
// for its artifact before recomputing it.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the elcomtarif home directory.
	DefaultDirName = ".elcomtarif"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	documentsDirName = "documents"
	linksDirName     = "document-links"
	errorsDirName    = "document-errors"
	outputDirName    = "output"
	schemaDirName    = "schema"
)

// Dir represents the elcomtarif home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.elcomtarif).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// EnsureExists creates the home directory and its subdirectories.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{
		filepath.Join(d.path, documentsDirName),
		filepath.Join(d.path, linksDirName),
		filepath.Join(d.path, errorsDirName),
		d.OutputDir(),
		d.SchemaDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// DocumentsDir returns the cached-document directory for a tariff year.
func (d *Dir) DocumentsDir(year int) string {
	return filepath.Join(d.path, documentsDirName, fmt.Sprintf("%d", year))
}

// DocumentPath returns the cache path for an operator's tariff sheet.
func (d *Dir) DocumentPath(operatorID, year int) string {
	return filepath.Join(d.DocumentsDir(year), fmt.Sprintf("operator_%d_%d.pdf", operatorID, year))
}

// DocumentLinkPath returns the path of the resolved source URL record.
func (d *Dir) DocumentLinkPath(operatorID, year int) string {
	return filepath.Join(d.path, linksDirName, fmt.Sprintf("%d", year),
		fmt.Sprintf("operator_%d_%d_link.txt", operatorID, year))
}

// DocumentErrorPath returns the path of the persisted fetch error artifact.
func (d *Dir) DocumentErrorPath(operatorID, year int) string {
	return filepath.Join(d.path, errorsDirName, fmt.Sprintf("%d", year),
		fmt.Sprintf("operator_%d_error_%d.json", operatorID, year))
}

// OutputDir returns the default root for per-operator extraction outputs.
func (d *Dir) OutputDir() string {
	return filepath.Join(d.path, outputDirName)
}

// SchemaDir returns the default root for the split-schema set.
func (d *Dir) SchemaDir() string {
	return filepath.Join(d.path, schemaDirName)
}
