package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSchemas(t *testing.T, root string, schemas map[string]string) {
	t.Helper()
	dir := filepath.Join(root, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create schema dir: %v", err)
	}
	for name, body := range schemas {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeSchemas(t, root, map[string]string{
		"split-schema-part-2.json": `{"type":"object","properties":{"field2":{"type":"string"}},"required":["field2"]}`,
		"split-schema-part-1.json": `{"type":"object","properties":{"field1":{"type":"string"}},"required":["field1"]}`,
		"notes.txt":                "not a schema",
	})

	reg, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if reg.Len() != 2 {
		t.Fatalf("expected 2 splits, got %d", reg.Len())
	}

	splits := reg.Splits()
	if splits[0].Index != 1 || splits[1].Index != 2 {
		t.Errorf("splits not in ascending order: %d, %d", splits[0].Index, splits[1].Index)
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	root := t.TempDir()
	writeSchemas(t, root, nil)

	if _, err := Load(root); err == nil {
		t.Error("expected error for empty schema directory")
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing split-schema directory")
	}
}

func TestSplit_Validate(t *testing.T) {
	root := t.TempDir()
	writeSchemas(t, root, map[string]string{
		"split-schema-part-1.json": `{"type":"object","properties":{"field1":{"type":"string"}},"required":["field1"]}`,
	})

	reg, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	split := reg.Splits()[0]

	t.Run("valid fragment", func(t *testing.T) {
		doc := map[string]any{"field1": "v1"}
		if err := split.Validate(doc); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})

	t.Run("invalid fragment", func(t *testing.T) {
		doc := map[string]any{"field1": 42}
		if err := split.Validate(doc); err == nil {
			t.Error("expected validation error for wrong type")
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		doc := map[string]any{}
		if err := split.Validate(doc); err == nil {
			t.Error("expected validation error for missing field")
		}
	})
}

func TestLoad_BadSchema(t *testing.T) {
	root := t.TempDir()
	writeSchemas(t, root, map[string]string{
		"split-schema-part-1.json": `{"type": `,
	})

	if _, err := Load(root); err == nil {
		t.Error("expected error for malformed schema JSON")
	}
}
