// Package kmer turns sequences into k-mer count vectors and compares them
// by cosine similarity. This is the only sequence comparison the whole
// pipeline does; there is no alignment anywhere.
package kmer

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidKmerSize is returned when k < 1 or k exceeds the shortest
// sequence taking part in a comparison.
var ErrInvalidKmerSize = errors.New("invalid kmer size")

// Vector counts every overlapping k-length word of one sequence.
// Immutable after Count returns.
type Vector struct {
	K      int
	Counts map[string]int
	norm   float64
}

// Count slides a window of size k across seq with stride 1. The sequence is
// uppercased first so soft-masked input compares equal to unmasked input.
// A sequence shorter than k yields an empty vector, which every similarity
// treats as 0; the length check against ErrInvalidKmerSize happens at
// comparison time, when both sequences are known.
func Count(seq string, k int) (*Vector, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidKmerSize, k)
	}

	v := &Vector{K: k, Counts: make(map[string]int)}
	s := strings.ToUpper(seq)
	for i := 0; i+k <= len(s); i++ {
		v.Counts[s[i:i+k]]++
	}

	var sq float64
	for _, n := range v.Counts {
		sq += float64(n) * float64(n)
	}
	v.norm = math.Sqrt(sq)

	return v, nil
}

// IsZero reports whether the vector has no words (sequence shorter than k).
func (v *Vector) IsZero() bool {
	return len(v.Counts) == 0
}

// Cosine returns the cosine similarity of two count vectors: dot product
// over the product of L2 norms. Symmetric, deterministic, in [0,1] for
// count vectors; 0 when either vector is empty. Comparing vectors built
// with different k is a caller bug and rejected.
func Cosine(a, b *Vector) (float64, error) {
	if a.K != b.K {
		return 0, fmt.Errorf("%w: comparing k=%d with k=%d", ErrInvalidKmerSize, a.K, b.K)
	}
	if a.IsZero() || b.IsZero() {
		return 0, nil
	}

	// Iterate the smaller map.
	small, large := a, b
	if len(b.Counts) < len(a.Counts) {
		small, large = b, a
	}

	var dot float64
	for word, n := range small.Counts {
		if m, ok := large.Counts[word]; ok {
			dot += float64(n) * float64(m)
		}
	}

	sim := dot / (a.norm * b.norm)
	if sim > 1 { // float round-off on identical vectors
		sim = 1
	}
	return sim, nil
}

// Compare is the one-shot form: vectorize both sequences and return their
// cosine similarity. Returns ErrInvalidKmerSize when k does not fit the
// shorter of the two sequences.
func Compare(seqA, seqB string, k int) (float64, error) {
	shortest := len(seqA)
	if len(seqB) < shortest {
		shortest = len(seqB)
	}
	if k < 1 || k > shortest {
		return 0, fmt.Errorf("%w: k=%d with shortest sequence %d", ErrInvalidKmerSize, k, shortest)
	}

	va, err := Count(seqA, k)
	if err != nil {
		return 0, err
	}
	vb, err := Count(seqB, k)
	if err != nil {
		return 0, err
	}
	return Cosine(va, vb)
}
