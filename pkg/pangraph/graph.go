// Package pangraph holds the genome-wide gene-group adjacency graph: one
// node per final group, one weighted edge per observed chromosomal
// neighborship. It backs the parallel-group merge pass and the
// variable-region query.
package pangraph

import (
	"sort"

	"github.com/yumyai/ggcluster/pkg/model"
)

type Edge struct {
	A, B   int // group ids, A < B
	Weight int // occurrences across all genomes and both directions
}

type Graph struct {
	nodes map[int]bool
	edges map[int]map[int]int
}

func New() *Graph {
	return &Graph{
		nodes: make(map[int]bool),
		edges: make(map[int]map[int]int),
	}
}

// Build walks every contig of every genome in gene order and counts, for
// each immediate gene-neighbor pair, an adjacency between their groups.
// Genes missing from the partition (dropped by an aborted refinement) are
// skipped without breaking the walk for their neighbors.
func Build(p *model.Partition, src *model.Collection) *Graph {
	g := New()
	for _, grp := range p.Groups {
		g.nodes[grp.GroupID] = true
	}

	for _, run := range src.ContigRuns() {
		prev := -1
		for _, gene := range run.Genes {
			id, ok := p.GroupOf(gene.GeneID)
			if !ok {
				continue
			}
			if prev >= 0 && prev != id {
				g.bump(prev, id, 1)
			}
			prev = id
		}
	}
	return g
}

// AddNode registers a group id, with or without edges.
func (g *Graph) AddNode(id int) {
	g.nodes[id] = true
}

// AddEdge adds n occurrences between groups a and b. Both endpoints are
// registered as nodes.
func (g *Graph) AddEdge(a, b, n int) {
	g.nodes[a] = true
	g.nodes[b] = true
	g.bump(a, b, n)
}

func (g *Graph) bump(a, b, n int) {
	if a > b {
		a, b = b, a
	}
	if g.edges[a] == nil {
		g.edges[a] = make(map[int]int)
	}
	if g.edges[b] == nil {
		g.edges[b] = make(map[int]int)
	}
	g.edges[a][b] += n
	g.edges[b][a] += n
}

func (g *Graph) Weight(a, b int) int {
	return g.edges[a][b]
}

// Nodes returns all group ids, ascending.
func (g *Graph) Nodes() []int {
	out := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Neighbors returns the adjacent group ids of id, ascending.
func (g *Graph) Neighbors(id int) []int {
	out := make([]int, 0, len(g.edges[id]))
	for nb := range g.edges[id] {
		out = append(out, nb)
	}
	sort.Ints(out)
	return out
}

// Edges returns the edge list sorted by (A, B), for export.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for a, nbs := range g.edges {
		for b, w := range nbs {
			if a < b {
				out = append(out, Edge{A: a, B: b, Weight: w})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// rename re-points every edge of old onto canon, summing duplicates and
// dropping the self-edge the merge itself creates.
func (g *Graph) rename(old, canon int) {
	if old == canon {
		return
	}
	for nb, w := range g.edges[old] {
		delete(g.edges[nb], old)
		if nb == canon {
			continue
		}
		g.bump(canon, nb, w)
	}
	delete(g.edges, old)
	delete(g.nodes, old)
	g.nodes[canon] = true
}
