package merge

import (
	"reflect"
	"testing"
)

func TestFragments_DisjointUnion(t *testing.T) {
	a := map[string]any{"field1": "v1"}
	b := map[string]any{"field2": "v2"}

	want := map[string]any{"field1": "v1", "field2": "v2"}

	got := Fragments([]map[string]any{a, b})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Disjoint key sets merge to the same union regardless of order.
	reversed := Fragments([]map[string]any{b, a})
	if !reflect.DeepEqual(reversed, want) {
		t.Errorf("expected %v with reversed input, got %v", want, reversed)
	}
}

func TestFragments_Deterministic(t *testing.T) {
	fragments := []map[string]any{
		{"tariffs": map[string]any{"base": 12.5}},
		{"tariffs": map[string]any{"peak": 18.0}, "operator": "ewz"},
	}

	first := Fragments(fragments)
	second := Fragments(fragments)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input produced different output: %v vs %v", first, second)
	}
}

func TestFragments_ShallowMergeCollision(t *testing.T) {
	got := Fragments([]map[string]any{
		{"a": map[string]any{"x": 1}},
		{"a": map[string]any{"y": 2}},
	})

	want := map[string]any{"a": map[string]any{"x": 1, "y": 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFragments_NestedConflictIncomingWins(t *testing.T) {
	got := Fragments([]map[string]any{
		{"a": map[string]any{"x": 1, "inner": map[string]any{"k": "old"}}},
		{"a": map[string]any{"inner": map[string]any{"k": "new", "extra": true}}},
	})

	want := map[string]any{
		"a": map[string]any{
			"x":     1,
			"inner": map[string]any{"k": "new", "extra": true},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFragments_ScalarCollisionReplaces(t *testing.T) {
	got := Fragments([]map[string]any{
		{"a": 1},
		{"a": 2},
	})
	if got["a"] != 2 {
		t.Errorf("expected incoming scalar to replace existing, got %v", got["a"])
	}
}

func TestFragments_MixedTypeCollisionReplaces(t *testing.T) {
	got := Fragments([]map[string]any{
		{"a": map[string]any{"x": 1}},
		{"a": "flattened"},
	})
	if got["a"] != "flattened" {
		t.Errorf("expected incoming value to replace object, got %v", got["a"])
	}
}

func TestFragments_Empty(t *testing.T) {
	if got := Fragments(nil); len(got) != 0 {
		t.Errorf("expected empty record for nil input, got %v", got)
	}
	if got := Fragments([]map[string]any{}); len(got) != 0 {
		t.Errorf("expected empty record for empty input, got %v", got)
	}
}

func TestFragments_DoesNotMutateInputs(t *testing.T) {
	a := map[string]any{"a": map[string]any{"x": 1}}
	b := map[string]any{"a": map[string]any{"y": 2}}

	Fragments([]map[string]any{a, b})

	if len(a["a"].(map[string]any)) != 1 || len(b["a"].(map[string]any)) != 1 {
		t.Error("merge mutated an input fragment")
	}
}
