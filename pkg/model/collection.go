package model

import (
	"fmt"
	"sort"
)

// GeneSource is the read-only view the engine works against. Any backing
// store (FASTA load, sqlite, fixtures in tests) only has to provide this.
type GeneSource interface {
	Genes() []*Gene
	Genomes() []*Genome
	Gene(id string) (*Gene, bool)
}

// ContigRun is one contig of one genome with its genes in chromosomal
// order. Adjacency and neighborhood scoring both walk these runs.
type ContigRun struct {
	GenomeID string
	ContigID string
	Genes    []*Gene
}

// Placement locates a gene inside the contig-run list.
type Placement struct {
	Run   int // index into ContigRuns()
	Index int // position of the gene within the run
}

// Collection is the in-memory gene collection. Built once at load time and
// treated as read-only afterwards; the engine never mutates gene records.
type Collection struct {
	genes      []*Gene
	byID       map[string]*Gene
	genomes    []*Genome
	runs       []ContigRun
	placements map[string]Placement
}

// NewCollection indexes genes by id and genome and derives per-contig gene
// order from their regions. Genome and contig iteration order is sorted by
// id so every downstream pass is input-order independent.
func NewCollection(genes []*Gene) (*Collection, error) {
	if len(genes) == 0 {
		return nil, fmt.Errorf("collection: no genes")
	}

	byID := make(map[string]*Gene, len(genes))
	byGenome := make(map[string][]*Gene)

	for _, g := range genes {
		if g.GeneID == "" {
			return nil, fmt.Errorf("collection: gene with empty id (genome %s)", g.GenomeID)
		}
		if _, dup := byID[g.GeneID]; dup {
			return nil, fmt.Errorf("collection: duplicate gene id %s", g.GeneID)
		}
		if g.Region != nil && g.Region.Start > g.Region.End {
			return nil, fmt.Errorf("collection: gene %s has start > end (%d > %d)",
				g.GeneID, g.Region.Start, g.Region.End)
		}
		byID[g.GeneID] = g
		byGenome[g.GenomeID] = append(byGenome[g.GenomeID], g)
	}

	genomeIDs := make([]string, 0, len(byGenome))
	for id := range byGenome {
		genomeIDs = append(genomeIDs, id)
	}
	sort.Strings(genomeIDs)

	c := &Collection{
		genes:      genes,
		byID:       byID,
		placements: make(map[string]Placement),
	}

	for _, gid := range genomeIDs {
		c.genomes = append(c.genomes, &Genome{GenomeID: gid, Genes: byGenome[gid]})
		c.indexContigs(gid, byGenome[gid])
	}

	return c, nil
}

func (c *Collection) indexContigs(genomeID string, genes []*Gene) {
	byContig := make(map[string][]*Gene)
	for _, g := range genes {
		if g.Region == nil {
			continue
		}
		byContig[g.Region.ContigID] = append(byContig[g.Region.ContigID], g)
	}

	contigIDs := make([]string, 0, len(byContig))
	for id := range byContig {
		contigIDs = append(contigIDs, id)
	}
	sort.Strings(contigIDs)

	for _, cid := range contigIDs {
		run := byContig[cid]
		sort.Slice(run, func(i, j int) bool {
			if run[i].Region.Start != run[j].Region.Start {
				return run[i].Region.Start < run[j].Region.Start
			}
			return run[i].GeneID < run[j].GeneID
		})
		idx := len(c.runs)
		c.runs = append(c.runs, ContigRun{GenomeID: genomeID, ContigID: cid, Genes: run})
		for i, g := range run {
			c.placements[g.GeneID] = Placement{Run: idx, Index: i}
		}
	}
}

func (c *Collection) Genes() []*Gene {
	return c.genes
}

func (c *Collection) Genomes() []*Genome {
	return c.genomes
}

func (c *Collection) Gene(id string) (*Gene, bool) {
	g, ok := c.byID[id]
	return g, ok
}

func (c *Collection) ContigRuns() []ContigRun {
	return c.runs
}

// Placement returns where geneID sits in chromosomal order. ok is false
// for genes without positional data.
func (c *Collection) Placement(geneID string) (Placement, bool) {
	p, ok := c.placements[geneID]
	return p, ok
}

// Flank returns up to n gene neighbors on one side of the gene, nearest
// first, in transcript orientation: dir = +1 walks downstream of a
// forward-strand gene (increasing start) and upstream of a reverse-strand
// one. The walk never crosses a contig boundary.
func (c *Collection) Flank(geneID string, dir int, n int) []*Gene {
	p, ok := c.placements[geneID]
	if !ok || n <= 0 {
		return nil
	}
	run := c.runs[p.Run]
	step := dir
	if g := run.Genes[p.Index]; g.Region != nil && g.Region.Strand == Reverse {
		step = -dir
	}

	out := make([]*Gene, 0, n)
	for i := p.Index + step; i >= 0 && i < len(run.Genes) && len(out) < n; i += step {
		out = append(out, run.Genes[i])
	}
	return out
}
