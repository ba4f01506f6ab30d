package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// batchPool bounds embedding fan-out to a fixed worker count (spec.md §5:
// "embedding batches are bounded... parallel within a batch"), grounded on
// the teacher's go.mod panjf2000/ants/v2 dependency (unused by the retrieved
// slice; this is its first concrete home).
type batchPool struct {
	pool    *ants.Pool
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func newBatchPool(size int, embedFn func(ctx context.Context, text string) ([]float32, error)) (*batchPool, error) {
	p, err := ants.NewPool(size, ants.WithPreAlloc(false))
	if err != nil {
		return nil, err
	}
	return &batchPool{pool: p, embedFn: embedFn}, nil
}

// embedBatch embeds every text in texts concurrently, bounded by the pool's
// worker count, preserving input order in the result slice.
func (b *batchPool) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	var wg sync.WaitGroup
	for i, text := range texts {
		i, text := i, text
		wg.Add(1)
		submitErr := b.pool.Submit(func() {
			defer wg.Done()
			vec, err := b.embedFn(ctx, text)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = vec
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embed batch item %d: %w", i, err)
		}
	}
	return results, nil
}
