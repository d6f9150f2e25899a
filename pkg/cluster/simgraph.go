package cluster

import (
	"fmt"
	"sort"

	"github.com/yumyai/ggcluster/pkg/kmer"
	"github.com/yumyai/ggcluster/pkg/model"
)

// GraphOptions are the per-signal gates and weights for one refinement
// graph. All three thresholds are lower limits; an edge exists only when
// every signal passes its gate.
type GraphOptions struct {
	K int

	SeqMin      float64 // kmer cosine similarity gate
	NeighborMin float64 // chromosomal-context gate
	LengthMin   float64 // min/max length ratio gate

	Vicinity int // genes inspected on each side for the neighborhood score

	// Aggregation weights for the edge value. Renormalized internally, and
	// again when the graph falls back to position-free mode.
	WeightSeq      float64
	WeightNeighbor float64
	WeightLength   float64
}

func (o GraphOptions) validate() error {
	for _, t := range []float64{o.SeqMin, o.NeighborMin, o.LengthMin} {
		if t < 0 || t > 1 {
			return fmt.Errorf("%w: refinement gate %v", ErrInvalidThreshold, t)
		}
	}
	if o.Vicinity < 0 {
		return fmt.Errorf("%w: vicinity %d", ErrInvalidThreshold, o.Vicinity)
	}
	if o.WeightSeq < 0 || o.WeightNeighbor < 0 || o.WeightLength < 0 ||
		o.WeightSeq+o.WeightNeighbor+o.WeightLength == 0 {
		return fmt.Errorf("%w: aggregation weights %v/%v/%v",
			ErrInvalidThreshold, o.WeightSeq, o.WeightNeighbor, o.WeightLength)
	}
	return nil
}

type Edge struct {
	A, B   string // gene ids, A < B
	Weight float64
}

// Graph is the weighted similarity graph of one coarse group. Thrown away
// right after clique extraction.
type Graph struct {
	CoarseID     int
	Nodes        []string
	Edges        []Edge
	PositionFree bool

	adj map[string]map[string]float64
}

// Connected reports the edge weight between two genes, if any.
func (g *Graph) Connected(a, b string) (float64, bool) {
	w, ok := g.adj[a][b]
	return w, ok
}

// BuildGraph scores every cross-genome gene pair of one coarse group.
// coarseOf maps every gene of the collection to its coarse group, which is
// what the neighborhood signal matches flanking genes on. When any member
// lacks positional data the whole graph degrades to position-free mode:
// the neighborhood signal is dropped, weights renormalize, and one
// MissingPosition diagnostic is recorded for the group.
func BuildGraph(grp CoarseGroup, src *model.Collection, coarseOf map[string]int,
	vecs map[string]*kmer.Vector, opt GraphOptions, diags *Collector) (*Graph, error) {

	if err := opt.validate(); err != nil {
		return nil, err
	}

	members := make([]*model.Gene, 0, len(grp.GeneIDs))
	for _, id := range grp.GeneIDs {
		gene, ok := src.Gene(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s in coarse group %d", ErrUnknownGene, id, grp.ID)
		}
		members = append(members, gene)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].GeneID < members[j].GeneID })

	g := &Graph{
		CoarseID: grp.ID,
		adj:      make(map[string]map[string]float64, len(members)),
	}
	for _, m := range members {
		g.Nodes = append(g.Nodes, m.GeneID)
	}

	useNeighborhood := opt.Vicinity > 0
	if useNeighborhood {
		var missing []string
		for _, m := range members {
			if !m.HasPosition() {
				missing = append(missing, m.GeneID)
			}
		}
		if len(missing) > 0 {
			useNeighborhood = false
			g.PositionFree = true
			diags.Add(Diagnostic{
				Kind:     DiagMissingPosition,
				CoarseID: grp.ID,
				GeneIDs:  missing,
				Message:  "no position data, neighborhood similarity disabled for group",
			})
		}
	}

	wSeq, wNbr, wLen := opt.WeightSeq, opt.WeightNeighbor, opt.WeightLength
	if !useNeighborhood {
		wNbr = 0
	}
	total := wSeq + wNbr + wLen
	if total == 0 {
		// Degenerate config (all weight on the dropped signal): score on
		// sequence alone.
		wSeq, total = 1, 1
	}

	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := members[i], members[j]
			if a.GenomeID == b.GenomeID {
				continue // paralogue linking handles these later
			}

			seqSim, err := kmer.Cosine(vecs[a.GeneID], vecs[b.GeneID])
			if err != nil {
				return nil, err
			}
			if seqSim < opt.SeqMin {
				continue
			}

			lenSim := lengthRatio(a.Length(), b.Length())
			if lenSim < opt.LengthMin {
				continue
			}

			nbrSim := 0.0
			if useNeighborhood {
				nbrSim = neighborhoodSimilarity(a, b, src, coarseOf, opt.Vicinity)
				if nbrSim < opt.NeighborMin {
					continue
				}
			}

			weight := (wSeq*seqSim + wNbr*nbrSim + wLen*lenSim) / total
			g.addEdge(a.GeneID, b.GeneID, weight)
		}
	}

	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].Weight != g.Edges[j].Weight {
			return g.Edges[i].Weight > g.Edges[j].Weight
		}
		if g.Edges[i].A != g.Edges[j].A {
			return g.Edges[i].A < g.Edges[j].A
		}
		return g.Edges[i].B < g.Edges[j].B
	})

	return g, nil
}

func (g *Graph) addEdge(a, b string, w float64) {
	if b < a {
		a, b = b, a
	}
	if g.adj[a] == nil {
		g.adj[a] = make(map[string]float64)
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[string]float64)
	}
	g.adj[a][b] = w
	g.adj[b][a] = w
	g.Edges = append(g.Edges, Edge{A: a, B: b, Weight: w})
}

func lengthRatio(la, lb int) float64 {
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

// neighborhoodSimilarity compares the chromosomal context of two genes:
// the coarse-group identities of up to vicinity genes on each side, in
// transcript orientation so strand flips do not break the comparison.
// Score is matched positions over compared positions across both flanks;
// 1.0 when neither gene has any neighbor (single-gene contigs).
func neighborhoodSimilarity(a, b *model.Gene, src *model.Collection, coarseOf map[string]int, vicinity int) float64 {
	matched, compared := 0, 0
	for _, dir := range []int{+1, -1} {
		fa := flankGroups(a, src, coarseOf, dir, vicinity)
		fb := flankGroups(b, src, coarseOf, dir, vicinity)

		n := len(fa)
		if len(fb) > n {
			n = len(fb)
		}
		compared += n
		for i := 0; i < len(fa) && i < len(fb); i++ {
			if fa[i] >= 0 && fa[i] == fb[i] {
				matched++
			}
		}
	}
	if compared == 0 {
		return 1
	}
	return float64(matched) / float64(compared)
}

func flankGroups(g *model.Gene, src *model.Collection, coarseOf map[string]int, dir, n int) []int {
	neighbors := src.Flank(g.GeneID, dir, n)
	out := make([]int, 0, len(neighbors))
	for _, nb := range neighbors {
		if id, ok := coarseOf[nb.GeneID]; ok {
			out = append(out, id)
		} else {
			out = append(out, -1) // unclustered neighbor never matches
		}
	}
	return out
}
