package pangraph

import (
	"sort"
)

// VariableRegion is a locally branching patch of the adjacency graph:
// candidate insertion/deletion sites or leftover mis-groupings. Read-only
// analysis output; nothing feeds back into grouping.
type VariableRegion struct {
	Center int   `json:"center"`
	Groups []int `json:"groups"`
}

// VariableRegions reports every node whose branching factor exceeds one
// (more than two distinct neighbors, so the chromosome forks around it)
// together with the groups reachable within flank hops. Centers ascend.
func (g *Graph) VariableRegions(flank int) []VariableRegion {
	if flank < 1 {
		flank = 1
	}

	var out []VariableRegion
	for _, center := range g.Nodes() {
		if len(g.edges[center]) <= 2 {
			continue
		}

		seen := map[int]bool{center: true}
		frontier := []int{center}
		for hop := 0; hop < flank; hop++ {
			var next []int
			for _, id := range frontier {
				for _, nb := range g.Neighbors(id) {
					if !seen[nb] {
						seen[nb] = true
						next = append(next, nb)
					}
				}
			}
			frontier = next
		}

		region := VariableRegion{Center: center}
		for id := range seen {
			region.Groups = append(region.Groups, id)
		}
		sort.Ints(region.Groups)
		out = append(out, region)
	}
	return out
}
