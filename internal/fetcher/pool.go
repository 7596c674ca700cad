package fetcher

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result pairs an operator with the outcome of its fetch.
type Result struct {
	OperatorID int
	Artifact   *Artifact
	Err        error
}

// FetchAll downloads documents for all operators with at most limit
// fetches in flight. Per-operator failures are recorded in the results
// and never abort sibling operators. Results are returned in input order.
func (f *Fetcher) FetchAll(ctx context.Context, operatorIDs []int, year, limit int) []Result {
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(operatorIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, operatorID := range operatorIDs {
		g.Go(func() error {
			artifact, err := f.Fetch(ctx, operatorID, year)
			if err != nil {
				f.logger.Error("document fetch failed", "operator", operatorID, "year", year, "error", err)
			}
			results[i] = Result{OperatorID: operatorID, Artifact: artifact, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
