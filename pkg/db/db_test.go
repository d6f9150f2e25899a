package db

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/yumyai/ggcluster/pkg/cluster"
	"github.com/yumyai/ggcluster/pkg/model"
)

func memDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitSchema(conn))
	return conn
}

func savedRun(t *testing.T) (*sql.DB, *model.Collection, *cluster.Result) {
	t.Helper()

	famA := strings.Repeat("ACGTTGCA", 40)
	famB := strings.Repeat("TTGACCAG", 40)
	genes := []*model.Gene{
		{GeneID: "a1", GenomeID: "org1", Seq: famA, Region: &model.Region{
			GenomeID: "org1", ContigID: "c1", Start: 100, End: 419, Strand: model.Forward}},
		{GeneID: "b1", GenomeID: "org1", Seq: famB, Region: &model.Region{
			GenomeID: "org1", ContigID: "c1", Start: 600, End: 919, Strand: model.Forward}},
		{GeneID: "a2", GenomeID: "org2", Seq: famA, Region: &model.Region{
			GenomeID: "org2", ContigID: "c2", Start: 100, End: 419, Strand: model.Forward}},
		{GeneID: "b2", GenomeID: "org2", Seq: famB, Region: &model.Region{
			GenomeID: "org2", ContigID: "c2", Start: 600, End: 919, Strand: model.Forward}},
	}
	src, err := model.NewCollection(genes)
	require.NoError(t, err)

	eng := cluster.New(cluster.Config{
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
		Workers:          1,
	})
	res, err := eng.Run(context.Background(), src)
	require.NoError(t, err)

	conn := memDB(t)
	meta := RunMeta{
		RunID:            "11111111-2222-3333-4444-555555555555",
		KmerSize:         5,
		CoarseThresholds: []float64{0.5},
		MeanClusterSize:  2,
		SizeVariance:     0,
	}
	require.NoError(t, SaveRun(conn, meta, src, res))
	return conn, src, res
}

func TestSaveAndListClusters(t *testing.T) {
	conn, _, res := savedRun(t)

	clusters, err := ListClusters(conn)
	require.NoError(t, err)
	require.Len(t, clusters, len(res.Partition.Groups))

	assert.Equal(t, "GC00001", clusters[0].ClusterID)
	assert.Equal(t, 2, clusters[0].Size)
	assert.Equal(t, 320, clusters[0].ExpectedLength)
}

func TestGetClusterMembers(t *testing.T) {
	conn, _, _ := savedRun(t)

	members, err := GetClusterMembers(conn, "GC00001")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "a1", members[0].GeneID)
	assert.Equal(t, "org1", members[0].GenomeID)
	assert.Equal(t, "c1", members[0].ContigID)
	assert.Equal(t, "+", members[0].Strand)

	_, err = GetClusterMembers(conn, "GC99999")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLoadAdjacency(t *testing.T) {
	conn, _, res := savedRun(t)

	edges, err := LoadAdjacency(conn)
	require.NoError(t, err)
	require.Len(t, edges, len(res.Adjacency.Edges()))

	// a-b adjacent in both genomes.
	assert.Equal(t, "GC00001", edges[0].ClusterA)
	assert.Equal(t, "GC00002", edges[0].ClusterB)
	assert.Equal(t, 2, edges[0].Weight)
}

func TestLoadMatrix(t *testing.T) {
	conn, _, _ := savedRun(t)

	m, err := LoadMatrix(conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"org1", "org2"}, m.GenomeIDs)
	require.Len(t, m.ClusterIDs, 2)
	assert.Equal(t, [][]int{{1, 1}, {1, 1}}, m.Counts)
}

func TestRunRowWritten(t *testing.T) {
	conn, _, _ := savedRun(t)

	var count, kmer int
	var thresholds string
	err := conn.QueryRow(`SELECT cluster_count, kmer_size, coarse_thresholds FROM runs`).
		Scan(&count, &kmer, &thresholds)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 5, kmer)
	assert.Equal(t, "0.5", thresholds)
}
