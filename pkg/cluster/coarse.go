package cluster

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/yumyai/ggcluster/logger"
	"github.com/yumyai/ggcluster/pkg/kmer"
	"github.com/yumyai/ggcluster/pkg/model"
)

// CoarseGroup is a low-precision family from the greedy pass. The
// representative is the founding (longest) member; its vector is what later
// genes were compared against.
type CoarseGroup struct {
	ID             int
	GeneIDs        []string
	Representative string
}

// CoarseOptions drives the greedy representative clustering.
type CoarseOptions struct {
	K int
	// Thresholds is the ladder, monotonic non-decreasing, all in [0,1].
	// With one entry this is plain single-pass greedy clustering; with
	// more, each pass re-clusters the previous pass's representatives at
	// the stricter threshold and sub-groups inherit membership.
	Thresholds []float64
}

func (o CoarseOptions) validate() error {
	if o.K < 1 {
		return fmt.Errorf("%w: k=%d", kmer.ErrInvalidKmerSize, o.K)
	}
	if len(o.Thresholds) == 0 {
		return fmt.Errorf("%w: no thresholds given", ErrInvalidThreshold)
	}
	prev := 0.0
	for i, t := range o.Thresholds {
		if t < 0 || t > 1 {
			return fmt.Errorf("%w: thresholds[%d]=%v", ErrInvalidThreshold, i, t)
		}
		if t < prev {
			return fmt.Errorf("%w: thresholds[%d]=%v after %v", ErrInvalidThreshold, i, t, prev)
		}
		prev = t
	}
	return nil
}

// CoarseCluster partitions genes into coarse groups. Genes are processed
// once per ladder rung, sorted by descending length (gene id breaks ties)
// so the output is identical across runs. vecs must hold a k-mer vector
// for every gene; see VectorizeAll.
func CoarseCluster(genes []*model.Gene, vecs map[string]*kmer.Vector, opt CoarseOptions) ([]CoarseGroup, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	if len(genes) == 0 {
		return nil, ErrEmptyInput
	}
	for _, g := range genes {
		if _, ok := vecs[g.GeneID]; !ok {
			return nil, fmt.Errorf("%w: no vector for %s", ErrUnknownGene, g.GeneID)
		}
	}

	// First rung clusters the raw genes.
	pool := make([]*model.Gene, len(genes))
	copy(pool, genes)
	groups, err := greedyPass(pool, vecs, opt.Thresholds[0])
	if err != nil {
		return nil, err
	}
	logger.Debug("coarse pass done",
		zap.Float64("threshold", opt.Thresholds[0]), zap.Int("groups", len(groups)))

	// Each stricter rung re-clusters every group's members on their own,
	// seeded by the group representative (the longest member sorts
	// first). Sub-groups stay inside their coarser parent, so the ladder
	// is a hierarchical refinement and every pair left together was
	// admitted at the final threshold.
	byGene := make(map[string]*model.Gene, len(genes))
	for _, g := range genes {
		byGene[g.GeneID] = g
	}
	for _, t := range opt.Thresholds[1:] {
		var next []CoarseGroup
		for _, grp := range groups {
			members := make([]*model.Gene, 0, len(grp.GeneIDs))
			for _, id := range grp.GeneIDs {
				members = append(members, byGene[id])
			}
			sub, err := greedyPass(members, vecs, t)
			if err != nil {
				return nil, err
			}
			for i := range sub {
				sub[i].ID = len(next)
				next = append(next, sub[i])
			}
		}
		groups = next
		logger.Debug("coarse pass done",
			zap.Float64("threshold", t), zap.Int("groups", len(groups)))
	}

	return groups, nil
}

// greedyPass is one CD-Hit-style sweep: longest gene first, assign to the
// best-matching existing representative at or above the threshold, else
// found a new group.
func greedyPass(pool []*model.Gene, vecs map[string]*kmer.Vector, threshold float64) ([]CoarseGroup, error) {
	ordered := make([]*model.Gene, len(pool))
	copy(ordered, pool)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Length() != ordered[j].Length() {
			return ordered[i].Length() > ordered[j].Length()
		}
		return ordered[i].GeneID < ordered[j].GeneID
	})

	var groups []CoarseGroup
	repVecs := make([]*kmer.Vector, 0, 64)

	for _, g := range ordered {
		vec := vecs[g.GeneID]

		best, bestSim := -1, 0.0
		for i, rv := range repVecs {
			sim, err := kmer.Cosine(vec, rv)
			if err != nil {
				return nil, err
			}
			if sim < threshold {
				continue
			}
			// Ties go to the lowest group id, so strictly-greater only.
			if best == -1 || sim > bestSim {
				best, bestSim = i, sim
			}
		}

		if best >= 0 {
			groups[best].GeneIDs = append(groups[best].GeneIDs, g.GeneID)
		} else {
			groups = append(groups, CoarseGroup{
				ID:             len(groups),
				GeneIDs:        []string{g.GeneID},
				Representative: g.GeneID,
			})
			repVecs = append(repVecs, vec)
		}
	}

	for i := range groups {
		sort.Strings(groups[i].GeneIDs)
	}
	return groups, nil
}
