package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"rill/internal/ast"
)

// PackResult is one decoded astpack.
type PackResult struct {
	Path    string
	Digest  Digest
	Builder *ast.Builder
}

// DecodePacks reads and decodes astpack files in parallel, one worker
// per file bounded by GOMAXPROCS. Results come back in input order;
// the first failure cancels the remaining work.
func DecodePacks(ctx context.Context, paths []string) ([]PackResult, error) {
	results := make([]PackResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("driver: read astpack %s: %w", path, err)
			}
			b, err := ast.DecodePack(data)
			if err != nil {
				return fmt.Errorf("driver: %s: %w", path, err)
			}
			results[i] = PackResult{Path: path, Digest: PackDigest(data), Builder: b}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
