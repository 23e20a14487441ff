// Package lz4codec wraps github.com/pierrec/lz4/v4's block API behind the
// minimal compress_bound/compress contract component B of the wire protocol
// needs: block-compress a byte range into a caller-provided buffer, no
// allocation on the hot path, and a boolean "didn't fit" outcome instead of
// an error the caller has to unwrap on every frame.
package lz4codec

import (
	"github.com/pierrec/lz4/v4"
)

// Mode selects the block compressor used by Compress.
type Mode int

const (
	// Fast is the default LZ4 block mode: lower ratio, minimal CPU.
	Fast Mode = iota
	// HC is the high-compression block mode: higher ratio, more CPU.
	HC
)

// CompressBound returns the worst-case compressed size for a block of n
// input bytes. The caller-provided output buffer passed to Compress must be
// at least this large.
func CompressBound(n int) int {
	return lz4.CompressBlockBound(n)
}

// Compressor block-compresses byte ranges into caller-owned buffers. It is
// not safe for concurrent use by multiple goroutines against the same
// instance (each Output Connection owns one, per the single-threaded
// cooperative model in §5).
type Compressor struct {
	mode Mode
	fast lz4.Compressor
	hc   lz4.CompressorHC
}

// NewCompressor returns a Compressor starting in mode.
func NewCompressor(mode Mode) *Compressor {
	c := &Compressor{mode: mode}
	c.hc.Level = lz4.Level9
	return c
}

// Mode reports the compressor's current block mode.
func (c *Compressor) Mode() Mode { return c.mode }

// SetMode switches the block mode used by subsequent Compress calls. Used by
// the adaptive LZ4 variants to trade ratio for latency at runtime; it never
// changes the on-wire LZ4 bit (see protocol.LZ4Mode.WireLZ4Bit).
func (c *Compressor) SetMode(mode Mode) { c.mode = mode }

// Compress writes the LZ4 block compression of src into dst and returns the
// number of bytes written. ok is false if dst was too small to hold the
// result (compress_failed at the call site), matching the "None" outcome in
// the component contract.
func (c *Compressor) Compress(src, dst []byte) (n int, ok bool) {
	if len(dst) < CompressBound(len(src)) {
		return 0, false
	}
	var err error
	switch c.mode {
	case HC:
		n, err = c.hc.CompressBlock(src, dst)
	default:
		n, err = c.fast.CompressBlock(src, dst)
	}
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
