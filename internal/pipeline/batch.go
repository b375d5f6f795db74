package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunBatch classifies paths with at most workers files in flight. Results
// come back in input order whatever order they finish in. Per-file failures
// are reported in their Result; the error is non-nil only when ctx ends
// first, in which case files never started are reported as failed.
func RunBatch(ctx context.Context, c *Classifier, paths []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = c.ClassifyFile(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Source == "" {
				results[i] = failed(paths[i], err)
			}
		}
		return results, err
	}
	return results, nil
}
