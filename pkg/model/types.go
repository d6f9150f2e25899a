// Core domain types shared by the clustering engine, the sqlite store
// and the serve API.

package model

// Strand of a gene on its contig.
type Strand int8

const (
	Forward Strand = 1
	Reverse Strand = -1
)

type Region struct {
	GenomeID string `json:"genome_id"`
	ContigID string `json:"contig_id"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Strand   Strand `json:"strand"`
}

// Gene is one annotated gene of one genome. Region is nil when the input
// carried no positional data; the engine then runs position-free.
type Gene struct {
	GeneID   string  `json:"gene_id"`
	GenomeID string  `json:"genome_id"`
	Seq      string  `json:"-"`
	Region   *Region `json:"region,omitempty"`
}

func (g *Gene) Length() int {
	return len(g.Seq)
}

// HasPosition reports whether the gene came with chromosomal coordinates.
func (g *Gene) HasPosition() bool {
	return g.Region != nil
}

type Genome struct {
	GenomeID string  `json:"genome_id"`
	Genes    []*Gene `json:"genes"`
}

// GeneGroup is one gene family of the table. GroupID is assigned once,
// after all refinement shards complete, so numbering is stable for a given
// input. ParentCoarse is -1 for groups with no coarse lineage (merged
// groups keep the parent only when all sources agree).
type GeneGroup struct {
	GroupID        int    `json:"group_id"`
	GeneIDs        []string `json:"gene_ids"`
	Representative string `json:"representative_gene"`
	ParentCoarse   int    `json:"parent_coarse,omitempty"`
	Links          []int  `json:"paralogue_links,omitempty"`
}

func (g *GeneGroup) Size() int {
	return len(g.GeneIDs)
}
