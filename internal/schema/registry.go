// Package schema loads and compiles the split-schema set.
//
// A split schema describes one disjoint subset of the harmonized tariff
// record's fields. The number of splits is driven by the files present in
// the schema directory, not hardcoded.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	// DirName is the subdirectory holding the split schemas.
	DirName = "split-schema"
)

var splitFileRe = regexp.MustCompile(`^split-schema-part-(\d+)\.json$`)

// Split is one compiled partial schema.
type Split struct {
	Index    int
	Path     string
	Raw      json.RawMessage
	compiled *jsonschema.Schema
}

// Validate checks a parsed fragment against this split's schema.
func (s *Split) Validate(doc any) error {
	if err := s.compiled.Validate(doc); err != nil {
		return fmt.Errorf("fragment does not match split schema %d: %w", s.Index, err)
	}
	return nil
}

// Registry holds all split schemas in ascending index order.
type Registry struct {
	splits []*Split
}

// Load reads and compiles every split schema under root/split-schema.
func Load(root string) (*Registry, error) {
	dir := filepath.Join(root, DirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory %s: %w", dir, err)
	}

	var splits []*Split
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := splitFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read split schema %d: %w", index, err)
		}

		compiled, err := compile(entry.Name(), raw)
		if err != nil {
			return nil, fmt.Errorf("failed to compile split schema %d: %w", index, err)
		}

		splits = append(splits, &Split{
			Index:    index,
			Path:     path,
			Raw:      raw,
			compiled: compiled,
		})
	}

	if len(splits) == 0 {
		return nil, fmt.Errorf("no split schemas found in %s", dir)
	}

	sort.Slice(splits, func(i, j int) bool { return splits[i].Index < splits[j].Index })

	return &Registry{splits: splits}, nil
}

// Splits returns the schemas in ascending split order.
func (r *Registry) Splits() []*Split {
	return r.splits
}

// Len returns the number of splits.
func (r *Registry) Len() int {
	return len(r.splits)
}

func compile(name string, raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}
