package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/ggcluster/pkg/model"
)

func testConfig() Config {
	return Config{
		K:                5,
		CoarseThresholds: []float64{0.5},
		SeqMin:           0.5,
		NeighborMin:      0.3,
		LengthMin:        0.5,
		Vicinity:         2,
		WeightSeq:        0.5,
		WeightNeighbor:   0.3,
		WeightLength:     0.2,
		ParalogueMin:     0.8,
		MergeMinShared:   2,
		Workers:          2,
	}
}

func runEngine(t *testing.T, cfg Config, genes []*model.Gene) *Result {
	t.Helper()
	src, err := model.NewCollection(genes)
	require.NoError(t, err)

	res, err := New(cfg).Run(context.Background(), src)
	require.NoError(t, err)
	return res
}

// Scenario: identical sequences, different organisms, no positions. One
// refined group, position-free fallback, MissingPosition diagnostic.
func TestRunPositionFreePair(t *testing.T) {
	seq := famA[:300]
	res := runEngine(t, testConfig(), []*model.Gene{
		mkGene("gA", "org1", seq),
		mkGene("gB", "org2", seq),
	})

	require.Len(t, res.Partition.Groups, 1)
	assert.Equal(t, []string{"gA", "gB"}, res.Partition.Groups[0].GeneIDs)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagMissingPosition, res.Diagnostics[0].Kind)
}

// Scenario: A and B from organism 1, C from organism 2, all similar. The
// same-organism pair can never co-occur: {A,C} plus singleton {B}.
func TestRunSameOrganismSplit(t *testing.T) {
	seq := famA[:300]
	res := runEngine(t, testConfig(), []*model.Gene{
		mkGene("gA", "org1", seq),
		mkGene("gB", "org1", seq),
		mkGene("gC", "org2", seq),
	})

	require.Len(t, res.Partition.Groups, 2)
	assert.Equal(t, []string{"gA", "gC"}, res.Partition.Groups[0].GeneIDs)
	assert.Equal(t, []string{"gB"}, res.Partition.Groups[1].GeneIDs)

	// The split siblings are paralogue-linked, not merged.
	assert.Equal(t, []int{2}, res.Partition.Groups[0].Links)
	assert.Equal(t, []int{1}, res.Partition.Groups[1].Links)
}

func TestRunNoSameOrganismInvariant(t *testing.T) {
	genes := []*model.Gene{
		mkGene("a1", "org1", famA),
		mkGene("a2", "org2", famA),
		mkGene("a3", "org1", mutate(famA, 80)),
		mkGene("b1", "org1", famB),
		mkGene("b2", "org2", mutate(famB, 80)),
		mkGene("c1", "org3", famC),
	}
	res := runEngine(t, testConfig(), genes)

	src, _ := model.NewCollection(genes)
	for _, grp := range res.Partition.Groups {
		seen := map[string]bool{}
		for _, id := range grp.GeneIDs {
			g, ok := src.Gene(id)
			require.True(t, ok)
			assert.False(t, seen[g.GenomeID],
				"group %d holds two genes of %s", grp.GroupID, g.GenomeID)
			seen[g.GenomeID] = true
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	genes := []*model.Gene{
		mkGene("a1", "org1", famA),
		mkGene("a2", "org2", mutate(famA, 80)),
		mkGene("a3", "org3", mutate(famA, 40)),
		mkGene("b1", "org1", famB),
		mkGene("b2", "org2", mutate(famB, 40)),
		mkGene("c1", "org3", famC),
		mkGene("c2", "org1", mutate(famC, 80)),
	}

	first := runEngine(t, testConfig(), genes)
	for i := 0; i < 3; i++ {
		again := runEngine(t, testConfig(), genes)
		assert.Equal(t, first.Partition.Groups, again.Partition.Groups)
		assert.Equal(t, first.Adjacency.Edges(), again.Adjacency.Edges())
	}
}

// Raising a refinement gate can only fragment groups further.
func TestRunThresholdMonotonicity(t *testing.T) {
	genes := []*model.Gene{
		mkGene("a1", "org1", famA),
		mkGene("a2", "org2", mutate(famA, 80)),
		mkGene("a3", "org3", mutate(famA, 40)),
		mkGene("a4", "org4", mutate(famA, 20)),
		mkGene("b1", "org1", famB),
		mkGene("b2", "org2", mutate(famB, 20)),
	}

	avgSize := func(res *Result) float64 {
		total := 0
		for _, g := range res.Partition.Groups {
			total += g.Size()
		}
		return float64(total) / float64(len(res.Partition.Groups))
	}

	loose := testConfig()
	loose.SeqMin = 0.5
	strict := testConfig()
	strict.SeqMin = 0.95

	looseRes := runEngine(t, loose, genes)
	strictRes := runEngine(t, strict, genes)

	assert.LessOrEqual(t, avgSize(strictRes), avgSize(looseRes))
}

func TestRunConfigValidatedFirst(t *testing.T) {
	genes := []*model.Gene{mkGene("a1", "org1", famA)}
	src, err := model.NewCollection(genes)
	require.NoError(t, err)

	bad := testConfig()
	bad.CoarseThresholds = []float64{0.9, 0.5}
	_, err = New(bad).Run(context.Background(), src)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	bad = testConfig()
	bad.ParalogueMin = -0.1
	_, err = New(bad).Run(context.Background(), src)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	bad = testConfig()
	bad.K = 0
	_, err = New(bad).Run(context.Background(), src)
	require.Error(t, err)
}

func TestRunEmptyCollectionRejected(t *testing.T) {
	_, err := model.NewCollection(nil)
	require.Error(t, err)
}

func TestRunWithPositions(t *testing.T) {
	// Two genomes, same gene order on one contig each: x - g - y. All
	// three families end as cross-genome pairs and the adjacency graph
	// chains them.
	genes := []*model.Gene{
		mkPlacedGene("x1", "org1", "c1", famB, 100, model.Forward),
		mkPlacedGene("g1", "org1", "c1", famA, 600, model.Forward),
		mkPlacedGene("y1", "org1", "c1", famC, 1100, model.Forward),
		mkPlacedGene("x2", "org2", "c2", famB, 100, model.Forward),
		mkPlacedGene("g2", "org2", "c2", famA, 600, model.Forward),
		mkPlacedGene("y2", "org2", "c2", famC, 1100, model.Forward),
	}
	res := runEngine(t, testConfig(), genes)

	require.Len(t, res.Partition.Groups, 3)
	for _, grp := range res.Partition.Groups {
		assert.Len(t, grp.GeneIDs, 2)
	}
	assert.Empty(t, res.Diagnostics)

	edges := res.Adjacency.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, 2, edges[0].Weight)
	assert.Equal(t, 2, edges[1].Weight)
}
