package kmer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountWindows(t *testing.T) {
	v, err := Count("ACGTACGT", 4)
	require.NoError(t, err)

	// 5 overlapping windows, ACGT twice.
	assert.Equal(t, 2, v.Counts["ACGT"])
	assert.Equal(t, 1, v.Counts["CGTA"])
	assert.Equal(t, 1, v.Counts["GTAC"])
	assert.Equal(t, 1, v.Counts["TACG"])
	assert.Len(t, v.Counts, 4)
}

func TestCountCaseInsensitive(t *testing.T) {
	upper, err := Count("ACGTACGT", 3)
	require.NoError(t, err)
	lower, err := Count("acgtacgt", 3)
	require.NoError(t, err)

	sim, err := Cosine(upper, lower)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sim)
}

func TestCountRejectsBadK(t *testing.T) {
	_, err := Count("ACGT", 0)
	assert.ErrorIs(t, err, ErrInvalidKmerSize)

	_, err = Count("ACGT", -3)
	assert.ErrorIs(t, err, ErrInvalidKmerSize)
}

func TestCosineSelfIsOne(t *testing.T) {
	v, err := Count("ACGTTGCAACGT", 5)
	require.NoError(t, err)

	sim, err := Cosine(v, v)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sim)
}

func TestCosineSymmetricAndBounded(t *testing.T) {
	seqs := []string{
		"ACGTACGTACGT",
		"TTTTTTTTTTTT",
		"ACGTTTTTACGT",
		"GGGCCCGGGCCC",
	}
	for _, a := range seqs {
		for _, b := range seqs {
			ab, err := Compare(a, b, 3)
			require.NoError(t, err)
			ba, err := Compare(b, a, 3)
			require.NoError(t, err)

			assert.Equal(t, ab, ba, "sim(%s,%s) not symmetric", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}

func TestCosineDisjointIsZero(t *testing.T) {
	sim, err := Compare("AAAAAAAA", "CCCCCCCC", 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosineZeroVector(t *testing.T) {
	short, err := Count("ACG", 5) // shorter than k: empty vector
	require.NoError(t, err)
	require.True(t, short.IsZero())

	full, err := Count("ACGTACGTAC", 5)
	require.NoError(t, err)

	sim, err := Cosine(short, full)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosineMismatchedK(t *testing.T) {
	a, _ := Count("ACGTACGT", 3)
	b, _ := Count("ACGTACGT", 4)

	_, err := Cosine(a, b)
	assert.ErrorIs(t, err, ErrInvalidKmerSize)
}

func TestCompareKLargerThanSequence(t *testing.T) {
	// k=5 against a 4-residue sequence must be rejected.
	_, err := Compare("ACGT", strings.Repeat("ACGT", 10), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKmerSize))
}

func TestCompareIdenticalSequences(t *testing.T) {
	seq := strings.Repeat("ACGTTGCA", 40) // 320 residues
	sim, err := Compare(seq, seq, 5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sim)
}
