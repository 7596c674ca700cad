package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/elcomtarif/elcomtarif/internal/source"
	"github.com/elcomtarif/elcomtarif/internal/testutil"
)

// failingSource fails resolution for selected operators only.
type failingSource struct {
	testutil.FakeSource
	failFor map[int]bool
}

func (s *failingSource) ResolveDocumentURL(ctx context.Context, operatorID, year int) (string, error) {
	if s.failFor[operatorID] {
		return "", source.ErrNotFound
	}
	return s.FakeSource.ResolveDocumentURL(ctx, operatorID, year)
}

func TestFetchAll_IsolatesFailures(t *testing.T) {
	src := &failingSource{
		FakeSource: testutil.FakeSource{
			URL:      "https://example/doc.pdf",
			Document: testutil.MinimalPDF(),
		},
		failFor: map[int]bool{1: true},
	}
	f, _ := newTestFetcher(t, src)

	results := f.FetchAll(context.Background(), []int{1, 2}, 2024, 2)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].OperatorID != 1 || results[0].Err == nil {
		t.Errorf("expected operator 1 to fail, got %+v", results[0])
	}
	var ferr *FetchError
	if !errors.As(results[0].Err, &ferr) {
		t.Errorf("expected FetchError for operator 1, got %v", results[0].Err)
	}
	if results[1].OperatorID != 2 || results[1].Err != nil {
		t.Errorf("expected operator 2 to succeed, got %+v", results[1])
	}
	if results[1].Artifact == nil {
		t.Error("expected artifact for operator 2")
	}
}

func TestFetchAll_BoundsConcurrency(t *testing.T) {
	src := &testutil.FakeSource{
		URL:      "https://example/doc.pdf",
		Document: testutil.MinimalPDF(),
	}
	f, _ := newTestFetcher(t, src)

	// limit below 1 is clamped rather than deadlocking
	results := f.FetchAll(context.Background(), []int{10, 11, 12}, 2024, 0)

	for _, res := range results {
		if res.Err != nil {
			t.Errorf("operator %d failed: %v", res.OperatorID, res.Err)
		}
	}
}
