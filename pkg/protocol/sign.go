package protocol

import (
	"sync/atomic"
	"time"
)

// SignGenerator issues correlation signs. Values strictly increase for the
// lifetime of the generator.
type SignGenerator struct {
	last atomic.Int64
}

// NewSignGenerator creates a generator whose first sign is start+1
func NewSignGenerator(start int64) *SignGenerator {
	g := &SignGenerator{}
	g.last.Store(start)
	return g
}

// Next returns the next sign
func (g *SignGenerator) Next() int64 {
	return g.last.Add(1)
}

// Seeding from the wall clock keeps signs from a restarted process away from
// the ones the server saw from the previous run.
var defaultSigns = NewSignGenerator(time.Now().UnixMilli())

// NextSign returns a process-unique sign from the shared generator
func NextSign() int64 {
	return defaultSigns.Next()
}
