package cluster

import (
	"sync"

	"go.uber.org/zap"

	"github.com/yumyai/ggcluster/logger"
)

type DiagKind string

const (
	DiagMissingPosition  DiagKind = "missing_position"
	DiagOrganismConflict DiagKind = "organism_conflict"
	DiagDegeneratePair   DiagKind = "degenerate_pair"
)

// Diagnostic is one recoverable degradation met during refinement. These
// are warnings, never fatal: the pipeline keeps going and the caller can
// inspect them afterwards.
type Diagnostic struct {
	Kind     DiagKind `json:"kind"`
	CoarseID int      `json:"coarse_id"`
	GeneIDs  []string `json:"gene_ids,omitempty"`
	Message  string   `json:"message"`
}

// Collector gathers diagnostics from refinement shards. Safe for
// concurrent use.
type Collector struct {
	mu   sync.Mutex
	list []Diagnostic
}

func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	c.list = append(c.list, d)
	c.mu.Unlock()

	logger.Warn(d.Message,
		zap.String("kind", string(d.Kind)),
		zap.Int("coarse_group", d.CoarseID),
		zap.Strings("genes", d.GeneIDs))
}

// All returns the collected diagnostics. Order is collection order, which
// depends on shard scheduling; callers needing stability should sort.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.list))
	copy(out, c.list)
	return out
}
