package cluster

import (
	"fmt"
	"sort"

	"github.com/yumyai/ggcluster/pkg/kmer"
	"github.com/yumyai/ggcluster/pkg/model"
)

// LinkParalogues records bidirectional paralogue links between refined
// groups that split off the same coarse parent and whose representatives
// are still kmer-similar at or above threshold. Membership is untouched;
// links are annotations until CollapseParalogues is asked for.
func LinkParalogues(groups []*model.GeneGroup, vecs map[string]*kmer.Vector, threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: paralogue threshold %v", ErrInvalidThreshold, threshold)
	}

	byParent := make(map[int][]*model.GeneGroup)
	for _, g := range groups {
		if g.ParentCoarse < 0 {
			continue
		}
		byParent[g.ParentCoarse] = append(byParent[g.ParentCoarse], g)
	}

	for _, sibs := range byParent {
		sort.Slice(sibs, func(i, j int) bool { return sibs[i].GroupID < sibs[j].GroupID })
		for i := 0; i < len(sibs); i++ {
			for j := i + 1; j < len(sibs); j++ {
				va, ok := vecs[sibs[i].Representative]
				if !ok {
					return fmt.Errorf("%w: representative %s", ErrUnknownGene, sibs[i].Representative)
				}
				vb, ok := vecs[sibs[j].Representative]
				if !ok {
					return fmt.Errorf("%w: representative %s", ErrUnknownGene, sibs[j].Representative)
				}
				sim, err := kmer.Cosine(va, vb)
				if err != nil {
					return err
				}
				if sim >= threshold {
					sibs[i].Links = append(sibs[i].Links, sibs[j].GroupID)
					sibs[j].Links = append(sibs[j].Links, sibs[i].GroupID)
				}
			}
		}
	}

	for _, g := range groups {
		sort.Ints(g.Links)
	}
	return nil
}

// RepPolicy picks the representative of a collapsed group from the linked
// groups' representatives.
type RepPolicy func(src model.GeneSource, repIDs []string) string

// LongestRepresentative is the default policy: the longest sequence among
// all linked representatives, gene id ascending on ties.
func LongestRepresentative(src model.GeneSource, repIDs []string) string {
	best := ""
	bestLen := -1
	sorted := make([]string, len(repIDs))
	copy(sorted, repIDs)
	sort.Strings(sorted)
	for _, id := range sorted {
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

// CollapseParalogues merges every paralogue-linked connected component
// into one group. The input groups are left untouched so the pre-collapse
// partition stays addressable; the merged view is returned. Applying it
// again to its own output is a no-op, since merged groups carry no links.
func CollapseParalogues(groups []*model.GeneGroup, src model.GeneSource, policy RepPolicy) ([]*model.GeneGroup, error) {
	if policy == nil {
		policy = LongestRepresentative
	}

	byID := make(map[int]*model.GeneGroup, len(groups))
	for _, g := range groups {
		byID[g.GroupID] = g
	}
	for _, g := range groups {
		for _, l := range g.Links {
			if _, ok := byID[l]; !ok {
				return nil, fmt.Errorf("%w: paralogue link %d -> %d", ErrUnknownGroup, g.GroupID, l)
			}
		}
	}

	// Connected components over the link relation, smallest id first so
	// component ids are stable.
	ids := make([]int, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.GroupID)
	}
	sort.Ints(ids)

	visited := make(map[int]bool, len(ids))
	var out []*model.GeneGroup

	for _, start := range ids {
		if visited[start] {
			continue
		}
		component := []int{}
		stack := []int{start}
		visited[start] = true
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, id)
			for _, next := range byID[id].Links {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		sort.Ints(component)

		if len(component) == 1 {
			g := byID[component[0]]
			out = append(out, &model.GeneGroup{
				GroupID:        g.GroupID,
				GeneIDs:        append([]string(nil), g.GeneIDs...),
				Representative: g.Representative,
				ParentCoarse:   g.ParentCoarse,
			})
			continue
		}

		var members, reps []string
		parent := byID[component[0]].ParentCoarse
		for _, id := range component {
			g := byID[id]
			members = append(members, g.GeneIDs...)
			reps = append(reps, g.Representative)
			if g.ParentCoarse != parent {
				parent = -1
			}
		}
		sort.Strings(members)

		out = append(out, &model.GeneGroup{
			GroupID:        component[0],
			GeneIDs:        members,
			Representative: policy(src, reps),
			ParentCoarse:   parent,
		})
	}

	return out, nil
}
