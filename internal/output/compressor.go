package output

import (
	"github.com/groovymister/gomister/internal/delta"
	"github.com/groovymister/gomister/internal/lz4codec"
	"github.com/groovymister/gomister/internal/protocol"
)

// blockCompressor is the shape delta.Compressor and a plain LZ4 compressor
// both satisfy: compress src into dst, reporting whether it fit.
type blockCompressor interface {
	Compress(src, dst []byte) (n int, ok bool)
}

// adaptiveAdapter adapts lz4codec.Adaptive (whose Compress call needs the
// current frame period) to blockCompressor by reading it from a pointer the
// owning Conn keeps up to date across switch_res calls.
type adaptiveAdapter struct {
	a           *lz4codec.Adaptive
	frameTimeNs *int64
}

func (w *adaptiveAdapter) Compress(src, dst []byte) (int, bool) {
	return w.a.Compress(src, dst, *w.frameTimeNs)
}

// compressor is the tagged union described in §9: none, lz4, or
// delta-wrapping-lz4. It owns no buffers itself; the Conn's owned buffer set
// supplies src/dst.
type compressor struct {
	mode  protocol.LZ4Mode
	block blockCompressor
	delta *delta.State
}

func newCompressor(mode protocol.LZ4Mode, maxFrameSize, keyframeInterval int, frameTimeNs *int64) *compressor {
	if mode == protocol.LZ4ModeOff {
		return &compressor{mode: mode}
	}

	var block blockCompressor
	switch {
	case mode.IsAdaptive():
		block = &adaptiveAdapter{a: lz4codec.NewAdaptive(), frameTimeNs: frameTimeNs}
	case mode.UsesHC():
		block = lz4codec.NewCompressor(lz4codec.HC)
	default:
		block = lz4codec.NewCompressor(lz4codec.Fast)
	}

	c := &compressor{mode: mode, block: block}
	if mode.IsDelta() {
		c.delta = delta.NewState(maxFrameSize, keyframeInterval)
	}
	return c
}

// encode runs the frame through the compressor variant, writing the result
// into dst. isDelta is always false when mode has no delta component.
func (c *compressor) encode(src []byte, field byte, dst []byte) (n int, isDelta bool, err error) {
	if c.mode == protocol.LZ4ModeOff {
		n = copy(dst, src)
		return n, false, nil
	}
	if c.delta != nil {
		n, isDelta, err = c.delta.Encode(c.block, src, int(field), dst)
		return n, isDelta, err
	}
	n, ok := c.block.Compress(src, dst)
	if !ok {
		return 0, false, ErrCompressFailed
	}
	return n, false, nil
}
