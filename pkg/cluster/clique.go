package cluster

import (
	"sort"
)

// SplitCliques partitions the graph's nodes into disjoint cliques, highest
// weighted edge first. Greedy and precision-biased: a gene only ever joins
// a group it is connected to in full, so over-fragmenting is accepted and
// left to the adjacency merge pass to repair. Nodes without a qualifying
// edge come out as singletons.
//
// genomeOf guards the one-gene-per-genome invariant. A same-genome pair
// inside a clique means the graph was built wrong; the error carries the
// coarse group and the offending genes, and the caller drops this group's
// refinement rather than the run.
func SplitCliques(g *Graph, genomeOf map[string]string) ([][]string, error) {
	consumed := make(map[string]bool, len(g.Nodes))
	var cliques [][]string

	// Edges are pre-sorted by weight desc, then id pair, so iteration
	// order is the extraction order.
	for _, e := range g.Edges {
		if consumed[e.A] || consumed[e.B] {
			continue
		}

		clique := []string{e.A, e.B}
		inClique := map[string]bool{e.A: true, e.B: true}

		for {
			cand, ok := bestExtension(g, clique, inClique, consumed)
			if !ok {
				break
			}
			clique = append(clique, cand)
			inClique[cand] = true
		}

		sort.Strings(clique)
		if err := checkGenomes(g.CoarseID, clique, genomeOf); err != nil {
			return nil, err
		}
		for _, id := range clique {
			consumed[id] = true
		}
		cliques = append(cliques, clique)
	}

	// Leftovers become one-member groups, in id order.
	for _, id := range g.Nodes {
		if !consumed[id] {
			cliques = append(cliques, []string{id})
		}
	}

	return cliques, nil
}

// bestExtension picks the unconsumed node connected to every clique
// member, preferring the highest total edge weight into the clique and
// breaking ties toward the lowest gene id.
func bestExtension(g *Graph, clique []string, inClique, consumed map[string]bool) (string, bool) {
	bestID, bestSum, found := "", 0.0, false

	for _, cand := range g.Nodes {
		if consumed[cand] || inClique[cand] {
			continue
		}
		sum, connected := 0.0, true
		for _, member := range clique {
			w, ok := g.Connected(cand, member)
			if !ok {
				connected = false
				break
			}
			sum += w
		}
		if !connected {
			continue
		}
		if !found || sum > bestSum || (sum == bestSum && cand < bestID) {
			bestID, bestSum, found = cand, sum, true
		}
	}

	return bestID, found
}

func checkGenomes(coarseID int, clique []string, genomeOf map[string]string) error {
	seen := make(map[string]string, len(clique))
	for _, id := range clique {
		genome := genomeOf[id]
		if prev, dup := seen[genome]; dup {
			return &OrganismConflictError{
				CoarseID: coarseID,
				GenomeID: genome,
				GeneA:    prev,
				GeneB:    id,
			}
		}
		seen[genome] = id
	}
	return nil
}
