package cluster

import (
	"errors"
	"fmt"
)

// Configuration errors are raised before any computation starts.
var (
	ErrInvalidThreshold = errors.New("threshold outside [0,1] or ladder not monotonic")
	ErrEmptyInput       = errors.New("no genes supplied")
	ErrUnknownGroup     = errors.New("unknown group id")
	ErrUnknownGene      = errors.New("unknown gene id")
)

// OrganismConflictError means clique extraction tried to place two genes of
// the same genome into one refined group. That can only happen when the
// similarity graph was built wrong, so refinement of the offending coarse
// group is aborted and the caller gets the full context.
type OrganismConflictError struct {
	CoarseID int
	GenomeID string
	GeneA    string
	GeneB    string
}

func (e *OrganismConflictError) Error() string {
	return fmt.Sprintf("organism conflict in coarse group %d: genes %s and %s both belong to %s",
		e.CoarseID, e.GeneA, e.GeneB, e.GenomeID)
}
