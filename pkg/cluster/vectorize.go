package cluster

import (
	"context"
	"runtime"
	"sync"

	"github.com/yumyai/ggcluster/pkg/kmer"
	"github.com/yumyai/ggcluster/pkg/model"
)

// VectorizeAll computes the k-mer vector of every gene on a worker pool.
// Vector computation is independent per gene, so this is the one fully
// parallel stage before the sequential coarse pass. Results land in a map
// keyed by gene id; partial results of a cancelled run are discarded.
func VectorizeAll(ctx context.Context, genes []*model.Gene, k, workers int) (map[string]*kmer.Vector, error) {
	if _, err := kmer.Count("", k); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(genes) {
		workers = len(genes)
	}

	type item struct {
		id  string
		vec *kmer.Vector
	}

	jobs := make(chan *model.Gene)
	results := make(chan item, workers)
	errc := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range jobs {
				vec, err := kmer.Count(g.Seq, k)
				if err != nil {
					errc <- err
					return
				}
				select {
				case results <- item{id: g.GeneID, vec: vec}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, g := range genes {
			select {
			case jobs <- g:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	vecs := make(map[string]*kmer.Vector, len(genes))
	for it := range results {
		vecs[it.id] = it.vec
	}

	select {
	case err := <-errc:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vecs, nil
}
