package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/ggcluster/pkg/model"
)

func defaultGraphOptions() GraphOptions {
	return GraphOptions{
		K:              5,
		SeqMin:         0.5,
		NeighborMin:    0.3,
		LengthMin:      0.5,
		Vicinity:       2,
		WeightSeq:      0.5,
		WeightNeighbor: 0.3,
		WeightLength:   0.2,
	}
}

func buildFixture(t *testing.T, genes []*model.Gene, k int) (*model.Collection, map[string]int, map[string]string, CoarseGroup) {
	t.Helper()
	src, err := model.NewCollection(genes)
	require.NoError(t, err)

	coarseOf := make(map[string]int)
	genomeOf := make(map[string]string)
	ids := make([]string, 0, len(genes))
	for _, g := range genes {
		coarseOf[g.GeneID] = 0
		genomeOf[g.GeneID] = g.GenomeID
		ids = append(ids, g.GeneID)
	}
	return src, coarseOf, genomeOf, CoarseGroup{ID: 0, GeneIDs: ids, Representative: ids[0]}
}

// Scenario: two identical 300-residue sequences from different organisms,
// no position data. They must connect with weight 1.0 in position-free
// mode, and one MissingPosition diagnostic must be recorded.
func TestBuildGraphPositionFreeFallback(t *testing.T) {
	seq := famA[:300]
	genes := []*model.Gene{
		mkGene("gA", "org1", seq),
		mkGene("gB", "org2", seq),
	}
	src, coarseOf, _, grp := buildFixture(t, genes, 5)
	vecs, err := VectorizeAll(context.Background(), genes, 5, 1)
	require.NoError(t, err)

	diags := &Collector{}
	g, err := BuildGraph(grp, src, coarseOf, vecs, defaultGraphOptions(), diags)
	require.NoError(t, err)

	assert.True(t, g.PositionFree)
	require.Len(t, g.Edges, 1)
	assert.InDelta(t, 1.0, g.Edges[0].Weight, 1e-9)

	all := diags.All()
	require.Len(t, all, 1)
	assert.Equal(t, DiagMissingPosition, all[0].Kind)
}

// Scenario: A and B share an organism, C does not. Only A-C and B-C edges
// may exist.
func TestBuildGraphExcludesSameOrganismPairs(t *testing.T) {
	seq := famA[:300]
	genes := []*model.Gene{
		mkGene("gA", "org1", seq),
		mkGene("gB", "org1", seq),
		mkGene("gC", "org2", seq),
	}
	src, coarseOf, _, grp := buildFixture(t, genes, 5)
	vecs, err := VectorizeAll(context.Background(), genes, 5, 1)
	require.NoError(t, err)

	g, err := BuildGraph(grp, src, coarseOf, vecs, defaultGraphOptions(), &Collector{})
	require.NoError(t, err)

	require.Len(t, g.Edges, 2)
	_, ab := g.Connected("gA", "gB")
	assert.False(t, ab)
	_, ac := g.Connected("gA", "gC")
	assert.True(t, ac)
	_, bc := g.Connected("gB", "gC")
	assert.True(t, bc)
}

func TestBuildGraphLengthGate(t *testing.T) {
	genes := []*model.Gene{
		mkGene("gA", "org1", famA),       // 320
		mkGene("gB", "org2", famA[:120]), // ratio 0.375 < 0.5
	}
	src, coarseOf, _, grp := buildFixture(t, genes, 5)
	vecs, err := VectorizeAll(context.Background(), genes, 5, 1)
	require.NoError(t, err)

	g, err := BuildGraph(grp, src, coarseOf, vecs, defaultGraphOptions(), &Collector{})
	require.NoError(t, err)
	assert.Empty(t, g.Edges)
}

func TestNeighborhoodSimilarity(t *testing.T) {
	// Two genomes with the same three-gene arrangement: x upstream of g,
	// y downstream. Flanking coarse identities agree fully.
	genes := []*model.Gene{
		mkPlacedGene("x1", "org1", "c1", famB, 100, model.Forward),
		mkPlacedGene("g1", "org1", "c1", famA, 600, model.Forward),
		mkPlacedGene("y1", "org1", "c1", famC, 1100, model.Forward),
		mkPlacedGene("x2", "org2", "c9", famB, 200, model.Forward),
		mkPlacedGene("g2", "org2", "c9", famA, 700, model.Forward),
		mkPlacedGene("y2", "org2", "c9", famC, 1200, model.Forward),
	}
	src, err := model.NewCollection(genes)
	require.NoError(t, err)

	coarseOf := map[string]int{
		"x1": 1, "x2": 1,
		"g1": 0, "g2": 0,
		"y1": 2, "y2": 2,
	}

	a, _ := src.Gene("g1")
	b, _ := src.Gene("g2")
	assert.Equal(t, 1.0, neighborhoodSimilarity(a, b, src, coarseOf, 1))

	// Swap one flank's identity and the score halves.
	coarseOf["y2"] = 7
	assert.Equal(t, 0.5, neighborhoodSimilarity(a, b, src, coarseOf, 1))
}

func TestNeighborhoodSimilarityStrandAware(t *testing.T) {
	// In genome 2 the gene sits on the reverse strand, so its transcript
	// downstream runs toward lower coordinates. The arrangement mirrors
	// genome 1 and must still score 1.0.
	genes := []*model.Gene{
		mkPlacedGene("x1", "org1", "c1", famB, 100, model.Forward),
		mkPlacedGene("g1", "org1", "c1", famA, 600, model.Forward),
		mkPlacedGene("y1", "org1", "c1", famC, 1100, model.Forward),
		mkPlacedGene("y2", "org2", "c9", famC, 200, model.Forward),
		mkPlacedGene("g2", "org2", "c9", famA, 700, model.Reverse),
		mkPlacedGene("x2", "org2", "c9", famB, 1200, model.Forward),
	}
	src, err := model.NewCollection(genes)
	require.NoError(t, err)

	coarseOf := map[string]int{
		"x1": 1, "x2": 1,
		"g1": 0, "g2": 0,
		"y1": 2, "y2": 2,
	}

	a, _ := src.Gene("g1")
	b, _ := src.Gene("g2")
	assert.Equal(t, 1.0, neighborhoodSimilarity(a, b, src, coarseOf, 1))
}

func TestBuildGraphInvalidOptions(t *testing.T) {
	genes := []*model.Gene{mkGene("gA", "org1", famA)}
	src, coarseOf, _, grp := buildFixture(t, genes, 5)

	opt := defaultGraphOptions()
	opt.SeqMin = 1.5
	_, err := BuildGraph(grp, src, coarseOf, nil, opt, &Collector{})
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
