package testutil

import (
	"strconv"
	"sync"
)

// SequenceGenerator yields prefix+"1", prefix+"2", ... and never runs out.
//
// Unlike grid.FixedGenerator, which panics once its list is consumed, this
// generator suits scenarios that add an unknown number of rows. The same
// scenario run twice produces the same ids, which keeps golden files
// stable.
//
// Thread-safety: SequenceGenerator is safe for concurrent use.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix uses "temp_".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "temp_"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return g.prefix + strconv.Itoa(g.n)
}
