// Package delta implements the per-field wrapping-subtract delta encoder
// (component C) that sits in front of the LZ4 codec. It does not implement
// compression itself: Encode hands the delta (or keyframe) bytes to a
// caller-supplied Compressor.
package delta

import "fmt"

// Compressor is the minimal shape delta needs from a block compressor:
// internal/lz4codec.Compressor satisfies it directly; lz4codec.Adaptive,
// whose Compress also takes the frame period, needs an adapter (see
// internal/output).
type Compressor interface {
	Compress(src, dst []byte) (n int, ok bool)
}

type field struct {
	prevFrame        []byte
	hasPrev          bool
	frameCount       int
	keyframeInterval int
}

// State holds the per-field previous-frame references, the shared scratch
// buffer, and the keyframe policy. Field 0 and field 1 are strictly
// independent: interlaced streams never cross-reference fields.
type State struct {
	fields           [2]field
	deltaBuf         []byte
	maxFrameSize     int
	keyframeInterval int
}

// NewState allocates a delta encoder for frames of at most maxFrameSize
// bytes. keyframeInterval of 0 disables periodic keyframes.
func NewState(maxFrameSize, keyframeInterval int) *State {
	s := &State{
		deltaBuf:         make([]byte, maxFrameSize),
		maxFrameSize:     maxFrameSize,
		keyframeInterval: keyframeInterval,
	}
	for i := range s.fields {
		s.fields[i] = field{
			prevFrame:        make([]byte, maxFrameSize),
			keyframeInterval: keyframeInterval,
		}
	}
	return s
}

// Reset clears both fields' previous-frame references, forcing the next
// Encode call for each field to emit a keyframe.
func (s *State) Reset() {
	for i := range s.fields {
		s.fields[i].hasPrev = false
		s.fields[i].frameCount = 0
	}
}

// Encode applies the §4.C policy for one field and LZ4-compresses the
// result (either src itself, on a keyframe, or the wrapping difference
// against the field's previous frame) into dst using comp. It returns the
// compressed length, whether the frame was encoded as a delta, and whether
// compression succeeded.
func (s *State) Encode(comp Compressor, src []byte, fieldIdx int, dst []byte) (n int, isDelta bool, err error) {
	if fieldIdx != 0 && fieldIdx != 1 {
		return 0, false, fmt.Errorf("delta: field must be 0 or 1, got %d", fieldIdx)
	}
	if len(src) > s.maxFrameSize {
		return 0, false, fmt.Errorf("delta: frame of %d bytes exceeds max %d", len(src), s.maxFrameSize)
	}
	f := &s.fields[fieldIdx]

	switch {
	case !f.hasPrev:
		copy(f.prevFrame, src)
		f.hasPrev = true
		f.frameCount = 0
		n, ok := comp.Compress(src, dst)
		if !ok {
			return 0, false, fmt.Errorf("delta: compress_failed (keyframe, field %d)", fieldIdx)
		}
		return n, false, nil

	default:
		f.frameCount++
		if f.keyframeInterval > 0 && f.frameCount >= f.keyframeInterval {
			f.frameCount = 0
			copy(f.prevFrame[:len(src)], src)
			n, ok := comp.Compress(src, dst)
			if !ok {
				return 0, false, fmt.Errorf("delta: compress_failed (periodic keyframe, field %d)", fieldIdx)
			}
			return n, false, nil
		}

		buf := s.deltaBuf[:len(src)]
		for i := range src {
			buf[i] = src[i] - f.prevFrame[i]
		}
		copy(f.prevFrame[:len(src)], src)
		n, ok := comp.Compress(buf, dst)
		if !ok {
			return 0, false, fmt.Errorf("delta: compress_failed (delta, field %d)", fieldIdx)
		}
		return n, true, nil
	}
}

// Reconstruct applies wrapping 8-bit addition of delta onto prev, writing
// the result into dst (which may alias prev). It is the FPGA-side
// reconstruction contract, kept here for tests that need to verify a
// round-trip without a real FPGA.
func Reconstruct(dst, delta, prev []byte) {
	for i := range delta {
		dst[i] = delta[i] + prev[i]
	}
}
