package lz4codec

import "time"

// Adaptive wraps a Compressor and switches between Fast and HC block modes
// based on how long compression has been taking relative to a frame-period
// budget. It never changes the on-wire LZ4 bit — only the host-side CPU/
// ratio trade-off (§4.B's adaptive LZ4 variants).
type Adaptive struct {
	c              *Compressor
	overBudgetRuns int
}

// NewAdaptive returns an Adaptive compressor starting in Fast mode.
func NewAdaptive() *Adaptive {
	return &Adaptive{c: NewCompressor(Fast)}
}

// Compress behaves like Compressor.Compress, then updates the block mode
// for the next call based on elapsed time against budget (25% of
// frameTimeNs, per §4.B).
func (a *Adaptive) Compress(src, dst []byte, frameTimeNs int64) (n int, ok bool) {
	start := time.Now()
	n, ok = a.c.Compress(src, dst)
	elapsed := time.Since(start)
	budget := time.Duration(frameTimeNs) / 4

	switch a.c.Mode() {
	case Fast:
		if elapsed > budget {
			a.overBudgetRuns++
			if a.overBudgetRuns >= 2 {
				a.c.SetMode(HC)
				a.overBudgetRuns = 0
			}
		} else {
			a.overBudgetRuns = 0
		}
	case HC:
		if elapsed < budget/2 {
			a.c.SetMode(Fast)
			a.overBudgetRuns = 0
		}
	}
	return n, ok
}

// Mode reports the compressor's current block mode.
func (a *Adaptive) Mode() Mode { return a.c.Mode() }
