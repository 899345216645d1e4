package rt433

import (
	"github.com/jd3nn1s/rt433/protocol"
	"sync/atomic"
)

// Sequencer hands out the 3-bit generation id carried by message frames.
// The zero value starts at 0.
type Sequencer struct {
	n atomic.Uint32
}

// Next returns the current id and advances the counter, wrapping mod 8.
func (s *Sequencer) Next() uint8 {
	return uint8((s.n.Add(1) - 1) & protocol.MaxSeq)
}
