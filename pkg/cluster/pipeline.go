package cluster

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/yumyai/ggcluster/logger"
	"github.com/yumyai/ggcluster/pkg/kmer"
	"github.com/yumyai/ggcluster/pkg/model"
	"github.com/yumyai/ggcluster/pkg/pangraph"
)

// Config is the full parameter surface of the engine, threaded explicitly
// from the CLI config; no component reads ambient state.
type Config struct {
	K                int
	CoarseThresholds []float64

	SeqMin      float64
	NeighborMin float64
	LengthMin   float64
	Vicinity    int

	WeightSeq      float64
	WeightNeighbor float64
	WeightLength   float64

	ParalogueMin float64

	MergeMinShared int

	Workers int
}

// Validate applies the fail-fast rules before any computation starts.
func (c Config) Validate() error {
	coarse := CoarseOptions{K: c.K, Thresholds: c.CoarseThresholds}
	if err := coarse.validate(); err != nil {
		return err
	}
	graph := c.graphOptions()
	if err := graph.validate(); err != nil {
		return err
	}
	if c.ParalogueMin < 0 || c.ParalogueMin > 1 {
		return fmt.Errorf("%w: paralogue threshold %v", ErrInvalidThreshold, c.ParalogueMin)
	}
	return nil
}

func (c Config) graphOptions() GraphOptions {
	return GraphOptions{
		K:              c.K,
		SeqMin:         c.SeqMin,
		NeighborMin:    c.NeighborMin,
		LengthMin:      c.LengthMin,
		Vicinity:       c.Vicinity,
		WeightSeq:      c.WeightSeq,
		WeightNeighbor: c.WeightNeighbor,
		WeightLength:   c.WeightLength,
	}
}

// Result is everything a run produces.
type Result struct {
	Partition   *model.Partition
	Adjacency   *pangraph.Graph
	Coarse      []CoarseGroup
	Diagnostics []Diagnostic
	Merges      int
	// AbortedCoarse lists coarse groups whose refinement hit an organism
	// conflict; their genes were emitted as singletons.
	AbortedCoarse []int
}

// Engine runs the two-stage grouping pipeline.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run executes: vectorize (parallel) -> coarse cluster (sequential) ->
// per-coarse-group refinement (sharded across workers) -> deterministic
// renumbering -> paralogue linking -> adjacency build and merge pass.
func (e *Engine) Run(ctx context.Context, src *model.Collection) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	genes := src.Genes()
	if len(genes) == 0 {
		return nil, ErrEmptyInput
	}

	workers := e.cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	vecs, err := VectorizeAll(ctx, genes, e.cfg.K, workers)
	if err != nil {
		return nil, err
	}
	logger.Info("vectorized genes", zap.Int("genes", len(genes)), zap.Int("k", e.cfg.K))

	coarse, err := CoarseCluster(genes, vecs, CoarseOptions{K: e.cfg.K, Thresholds: e.cfg.CoarseThresholds})
	if err != nil {
		return nil, err
	}
	logger.Info("coarse clustering done", zap.Int("groups", len(coarse)))

	coarseOf := make(map[string]int, len(genes))
	for _, grp := range coarse {
		for _, id := range grp.GeneIDs {
			coarseOf[id] = grp.ID
		}
	}
	genomeOf := make(map[string]string, len(genes))
	for _, g := range genes {
		genomeOf[g.GeneID] = g.GenomeID
	}

	refined, diags, aborted, err := e.refineAll(ctx, coarse, src, coarseOf, genomeOf, vecs, workers)
	if err != nil {
		return nil, err
	}
	logger.Info("refinement done",
		zap.Int("groups", len(refined)), zap.Int("aborted_coarse", len(aborted)))

	if err := LinkParalogues(refined, vecs, e.cfg.ParalogueMin); err != nil {
		return nil, err
	}

	part, err := model.NewPartition(refined)
	if err != nil {
		return nil, err
	}

	adj := pangraph.Build(part, src)
	merged, merges, err := pangraph.MergePass(part, adj, src, pangraph.MergeOptions{
		MinShared: e.cfg.MergeMinShared,
		K:         e.cfg.K,
		SimMin:    e.cfg.SeqMin,
	})
	if err != nil {
		return nil, err
	}
	if merges > 0 {
		logger.Info("merge pass folded parallel groups", zap.Int("merges", merges))
	}

	return &Result{
		Partition:     merged,
		Adjacency:     adj,
		Coarse:        coarse,
		Diagnostics:   diags.All(),
		Merges:        merges,
		AbortedCoarse: aborted,
	}, nil
}

// shardResult keeps one coarse group's cliques until global renumbering.
type shardResult struct {
	coarseID int
	cliques  [][]string
	aborted  bool
}

// refineAll shards coarse groups across workers. Workers publish into a
// slice indexed by coarse position, so global group ids can be assigned
// after the barrier in coarse-id order no matter which worker finished
// first.
func (e *Engine) refineAll(ctx context.Context, coarse []CoarseGroup, src *model.Collection,
	coarseOf map[string]int, genomeOf map[string]string,
	vecs map[string]*kmer.Vector, workers int) ([]*model.GeneGroup, *Collector, []int, error) {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	diags := &Collector{}
	results := make([]shardResult, len(coarse))
	jobs := make(chan int)
	errc := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := e.refineOne(coarse[idx], src, coarseOf, genomeOf, vecs, diags)
				if err != nil {
					errc <- err
					cancel() // unblock the feeder; siblings drain what is left
					return
				}
				results[idx] = res
			}
		}()
	}

	feed := func() error {
		defer close(jobs)
		for i := range coarse {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
	feedErr := make(chan error, 1)
	go func() { feedErr <- feed() }()

	wg.Wait()
	ferr := <-feedErr

	// A worker error wins over the cancellation it triggered.
	select {
	case err := <-errc:
		return nil, nil, nil, err
	default:
	}
	if ferr != nil {
		return nil, nil, nil, ferr
	}

	// Barrier passed: number groups 1..N in coarse-id order so ids are
	// input-order stable regardless of worker scheduling.
	var refined []*model.GeneGroup
	var aborted []int
	next := 1
	for _, res := range results {
		if res.aborted {
			aborted = append(aborted, res.coarseID)
		}
		for _, clique := range res.cliques {
			refined = append(refined, &model.GeneGroup{
				GroupID:        next,
				GeneIDs:        clique,
				Representative: longestOf(clique, src),
				ParentCoarse:   res.coarseID,
			})
			next++
		}
	}
	return refined, diags, aborted, nil
}

// refineOne builds the similarity graph of one coarse group and splits it
// into cliques. An organism conflict aborts this group only: every member
// falls back to a singleton and the defect is recorded.
func (e *Engine) refineOne(grp CoarseGroup, src *model.Collection, coarseOf map[string]int,
	genomeOf map[string]string, vecs map[string]*kmer.Vector, diags *Collector) (shardResult, error) {

	res := shardResult{coarseID: grp.ID}

	if len(grp.GeneIDs) == 1 {
		res.cliques = [][]string{{grp.GeneIDs[0]}}
		return res, nil
	}

	graph, err := BuildGraph(grp, src, coarseOf, vecs, e.cfg.graphOptions(), diags)
	if err != nil {
		return res, err
	}

	cliques, err := SplitCliques(graph, genomeOf)
	if err != nil {
		var conflict *OrganismConflictError
		if errors.As(err, &conflict) {
			diags.Add(Diagnostic{
				Kind:     DiagOrganismConflict,
				CoarseID: grp.ID,
				GeneIDs:  []string{conflict.GeneA, conflict.GeneB},
				Message:  conflict.Error(),
			})
			res.aborted = true
			for _, id := range grp.GeneIDs {
				res.cliques = append(res.cliques, []string{id})
			}
			return res, nil
		}
		return res, err
	}

	res.cliques = cliques
	return res, nil
}

func longestOf(ids []string, src *model.Collection) string {
	best, bestLen := "", -1
	for _, id := range ids {
		g, ok := src.Gene(id)
		if !ok {
			continue
		}
		if g.Length() > bestLen {
			best, bestLen = id, g.Length()
		}
	}
	return best
}
