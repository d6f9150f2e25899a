package pangraph

import (
	"sort"

	"go.uber.org/zap"

	"github.com/yumyai/ggcluster/logger"
	"github.com/yumyai/ggcluster/pkg/kmer"
	"github.com/yumyai/ggcluster/pkg/model"
)

// MergeOptions gate the parallel-group merge pass.
type MergeOptions struct {
	// MinShared is the minimum adjacency count both groups must have to a
	// common neighbor before they count as parallel.
	MinShared int
	// K and SimMin gate the representative-to-representative kmer check.
	K      int
	SimMin float64
}

// MergePass repairs over-fragmentation from strict clique splitting: two
// groups that run parallel through the adjacency graph (same flanking
// group in enough genomes) and whose representatives are still
// sequence-similar are folded into one. Merging only happens when the two
// groups cover disjoint genome sets, so the one-gene-per-genome invariant
// survives. The graph is updated in place; a new partition is returned
// along with the number of merges applied.
func MergePass(p *model.Partition, g *Graph, src model.GeneSource, opt MergeOptions) (*model.Partition, int, error) {
	if opt.MinShared < 1 {
		opt.MinShared = 1
	}

	// Group ids are 1-based, so the zero value marks "not merged".
	canon := make(map[int]int, len(p.Groups))
	find := func(id int) int {
		for canon[id] != 0 && canon[id] != id {
			id = canon[id]
		}
		return id
	}

	genomesOf := func(grp *model.GeneGroup) map[string]bool {
		set := make(map[string]bool, len(grp.GeneIDs))
		for _, gid := range grp.GeneIDs {
			if gene, ok := src.Gene(gid); ok {
				set[gene.GenomeID] = true
			}
		}
		return set
	}

	merges := 0
	for _, hub := range g.Nodes() {
		// Parallel candidates: distinct neighbors of one hub, both with
		// enough occurrences.
		var heavy []int
		for _, nb := range g.Neighbors(hub) {
			if g.Weight(hub, nb) >= opt.MinShared {
				heavy = append(heavy, nb)
			}
		}

		for i := 0; i < len(heavy); i++ {
			for j := i + 1; j < len(heavy); j++ {
				a, b := find(heavy[i]), find(heavy[j])
				if a == b {
					continue
				}
				if a > b {
					a, b = b, a
				}

				ga, aok := p.Group(a)
				gb, bok := p.Group(b)
				if !aok || !bok {
					continue
				}

				sim, err := representativeSim(ga, gb, src, opt.K)
				if err != nil {
					return nil, 0, err
				}
				if sim < opt.SimMin {
					continue
				}

				if overlaps(genomesOf(ga), genomesOf(gb)) {
					continue
				}

				canon[b] = a
				canon[a] = a
				g.rename(b, a)
				merges++
				logger.Debug("merged parallel groups",
					zap.Int("into", a), zap.Int("from", b), zap.Int("hub", hub))
			}
		}
	}

	if merges == 0 {
		return p, 0, nil
	}

	// Rebuild the partition under the merge map.
	grouped := make(map[int][]*model.GeneGroup)
	var order []int
	for _, grp := range p.Groups {
		id := find(grp.GroupID)
		if _, seen := grouped[id]; !seen {
			order = append(order, id)
		}
		grouped[id] = append(grouped[id], grp)
	}
	sort.Ints(order)

	var out []*model.GeneGroup
	for _, id := range order {
		parts := grouped[id]
		if len(parts) == 1 {
			out = append(out, remapLinks(parts[0], find))
			continue
		}

		var members []string
		parent := parts[0].ParentCoarse
		linkSet := make(map[int]bool)
		for _, part := range parts {
			members = append(members, part.GeneIDs...)
			if part.ParentCoarse != parent {
				parent = -1
			}
			for _, l := range part.Links {
				linkSet[find(l)] = true
			}
		}
		sort.Strings(members)
		delete(linkSet, id)

		merged := &model.GeneGroup{
			GroupID:        id,
			GeneIDs:        members,
			Representative: longestMember(members, src),
			ParentCoarse:   parent,
		}
		for l := range linkSet {
			merged.Links = append(merged.Links, l)
		}
		sort.Ints(merged.Links)
		out = append(out, merged)
	}

	np, err := model.NewPartition(out)
	if err != nil {
		return nil, 0, err
	}
	return np, merges, nil
}

func remapLinks(grp *model.GeneGroup, find func(int) int) *model.GeneGroup {
	if len(grp.Links) == 0 {
		return grp
	}
	seen := make(map[int]bool, len(grp.Links))
	clone := *grp
	clone.Links = nil
	for _, l := range grp.Links {
		id := find(l)
		if id != grp.GroupID && !seen[id] {
			seen[id] = true
			clone.Links = append(clone.Links, id)
		}
	}
	sort.Ints(clone.Links)
	return &clone
}

func representativeSim(a, b *model.GeneGroup, src model.GeneSource, k int) (float64, error) {
	ga, aok := src.Gene(a.Representative)
	gb, bok := src.Gene(b.Representative)
	if !aok || !bok {
		return 0, nil
	}
	va, err := kmer.Count(ga.Seq, k)
	if err != nil {
		return 0, err
	}
	vb, err := kmer.Count(gb.Seq, k)
	if err != nil {
		return 0, err
	}
	return kmer.Cosine(va, vb)
}

func overlaps(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

func longestMember(ids []string, src model.GeneSource) string {
	best, bestLen := "", -1
	for _, id := range ids {
		g, ok := src.Gene(id)
		if !ok {
			continue
		}
		if g.Length() > bestLen || (g.Length() == bestLen && id < best) {
			best, bestLen = id, g.Length()
		}
	}
	return best
}
