package fasta

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/ggcluster/pkg/model"
)

const sample = `>KCB09|contig000007|KCB09_00064 hypothetical protein
ACGTACGT
ACGT
>KCB09|contig000007|KCB09_00065
TTTTGGGG
>PINS|contig000001|PINS_00001
ACACACAC
`

func TestReadGenes(t *testing.T) {
	genes, err := ReadGenes(context.Background(), strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, genes, 3)

	assert.Equal(t, "KCB09_00064", genes[0].GeneID)
	assert.Equal(t, "KCB09", genes[0].GenomeID)
	assert.Equal(t, "ACGTACGTACGT", genes[0].Seq) // wrapped lines joined

	assert.Equal(t, "PINS_00001", genes[2].GeneID)
	assert.Equal(t, "PINS", genes[2].GenomeID)
}

func TestReadGenesMalformedHeader(t *testing.T) {
	_, err := ReadGenes(context.Background(), strings.NewReader(">just_a_name\nACGT\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genome|contig|gene")
}

func TestReadGenesSequenceBeforeHeader(t *testing.T) {
	_, err := ReadGenes(context.Background(), strings.NewReader("ACGT\n"))
	assert.Error(t, err)
}

func TestReadGenesEmpty(t *testing.T) {
	_, err := ReadGenes(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadGenesCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadGenes(ctx, strings.NewReader(sample))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadPositions(t *testing.T) {
	tsv := "# gene genome contig start end strand\n" +
		"KCB09_00064\tKCB09\tcontig000007\t100\t500\t+\n" +
		"KCB09_00065\tKCB09\tcontig000007\t700\t1200\t-\n"

	regions, err := ReadPositions(strings.NewReader(tsv))
	require.NoError(t, err)
	require.Len(t, regions, 2)

	r := regions["KCB09_00065"]
	require.NotNil(t, r)
	assert.Equal(t, 700, r.Start)
	assert.Equal(t, 1200, r.End)
	assert.Equal(t, model.Reverse, r.Strand)
}

func TestReadPositionsRejectsInvertedCoordinates(t *testing.T) {
	_, err := ReadPositions(strings.NewReader("g1\torg\tc1\t500\t100\t+\n"))
	assert.Error(t, err)
}

func TestReadPositionsRejectsBadStrand(t *testing.T) {
	_, err := ReadPositions(strings.NewReader("g1\torg\tc1\t100\t500\t*\n"))
	assert.Error(t, err)
}
