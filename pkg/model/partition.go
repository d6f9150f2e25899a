package model

import (
	"fmt"
	"sort"
)

// Partition is a set of gene groups in which every gene id appears at most
// once. It is the engine's primary output.
type Partition struct {
	Groups  []*GeneGroup
	byGene  map[string]int // gene id -> group id
	byGroup map[int]*GeneGroup
}

func NewPartition(groups []*GeneGroup) (*Partition, error) {
	p := &Partition{
		Groups:  groups,
		byGene:  make(map[string]int),
		byGroup: make(map[int]*GeneGroup, len(groups)),
	}
	for _, grp := range groups {
		if _, dup := p.byGroup[grp.GroupID]; dup {
			return nil, fmt.Errorf("partition: duplicate group id %d", grp.GroupID)
		}
		p.byGroup[grp.GroupID] = grp
		for _, gid := range grp.GeneIDs {
			if prev, dup := p.byGene[gid]; dup {
				return nil, fmt.Errorf("partition: gene %s in groups %d and %d", gid, prev, grp.GroupID)
			}
			p.byGene[gid] = grp.GroupID
		}
	}
	return p, nil
}

// GroupOf returns the group id holding geneID.
func (p *Partition) GroupOf(geneID string) (int, bool) {
	id, ok := p.byGene[geneID]
	return id, ok
}

func (p *Partition) Group(id int) (*GeneGroup, bool) {
	g, ok := p.byGroup[id]
	return g, ok
}

// CountMatrix is the groups x genomes gene-count view of a partition. A
// pure projection: derived on demand, never stored.
type CountMatrix struct {
	GroupIDs  []int
	GenomeIDs []string
	Counts    [][]int // Counts[i][j] = genes of GenomeIDs[j] in GroupIDs[i]
}

// Project builds the count matrix for the partition over src's genomes.
// Rows follow ascending group id, columns ascending genome id.
func (p *Partition) Project(src GeneSource) *CountMatrix {
	m := &CountMatrix{}
	for _, g := range src.Genomes() {
		m.GenomeIDs = append(m.GenomeIDs, g.GenomeID)
	}
	col := make(map[string]int, len(m.GenomeIDs))
	for j, id := range m.GenomeIDs {
		col[id] = j
	}

	for _, grp := range p.Groups {
		m.GroupIDs = append(m.GroupIDs, grp.GroupID)
	}
	sort.Ints(m.GroupIDs)

	row := make(map[int]int, len(m.GroupIDs))
	for i, id := range m.GroupIDs {
		row[id] = i
	}

	m.Counts = make([][]int, len(m.GroupIDs))
	for i := range m.Counts {
		m.Counts[i] = make([]int, len(m.GenomeIDs))
	}

	for _, grp := range p.Groups {
		for _, gid := range grp.GeneIDs {
			gene, ok := src.Gene(gid)
			if !ok {
				continue
			}
			if j, ok := col[gene.GenomeID]; ok {
				m.Counts[row[grp.GroupID]][j]++
			}
		}
	}
	return m
}
