package delta

import "testing"

// identityCompressor treats "compression" as a plain copy, so delta tests
// can verify the encoder's policy without depending on internal/lz4codec.
type identityCompressor struct{}

func (identityCompressor) Compress(src, dst []byte) (int, bool) {
	if len(dst) < len(src) {
		return 0, false
	}
	n := copy(dst, src)
	return n, true
}

func fill(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestEncode_firstFrameIsKeyframe(t *testing.T) {
	s := NewState(64, 0)
	dst := make([]byte, 64)
	n, isDelta, err := s.Encode(identityCompressor{}, fill(0x10, 16), 0, dst)
	if err != nil {
		t.Fatal(err)
	}
	if isDelta {
		t.Error("first frame for a field must not be a delta")
	}
	if n != 16 {
		t.Errorf("n = %d, want 16", n)
	}
}

func TestEncode_subsequentFramesAreDeltas(t *testing.T) {
	s := NewState(64, 0)
	dst := make([]byte, 64)
	s.Encode(identityCompressor{}, fill(0x10, 16), 0, dst)
	_, isDelta, err := s.Encode(identityCompressor{}, fill(0x20, 16), 0, dst)
	if err != nil {
		t.Fatal(err)
	}
	if !isDelta {
		t.Error("second frame should be encoded as a delta")
	}
}

func TestEncode_keyframeInterval(t *testing.T) {
	// Scenario 4 from the testable properties: frames 0x10,0x20,0x30,0x40,0x50
	// with keyframe_interval=3; reconstruction must exactly reproduce each
	// source frame.
	s := NewState(8, 3)
	dst := make([]byte, 8)
	frames := [][]byte{
		fill(0x10, 8), fill(0x20, 8), fill(0x30, 8), fill(0x40, 8), fill(0x50, 8),
	}
	var prevRef []byte
	reconstructed := make([][]byte, len(frames))

	for i, src := range frames {
		n, isDelta, err := s.Encode(identityCompressor{}, src, 0, dst)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		out := make([]byte, n)
		copy(out, dst[:n])
		got := make([]byte, len(src))
		if isDelta {
			if prevRef == nil {
				t.Fatalf("frame %d: delta with no previous reconstruction", i)
			}
			Reconstruct(got, out, prevRef)
		} else {
			copy(got, out)
		}
		reconstructed[i] = got
		prevRef = got

		for j, b := range got {
			if b != src[j] {
				t.Fatalf("frame %d: reconstructed[%d] = %#x, want %#x", i, j, b, src[j])
			}
		}
	}

	// frame_count sequence with keyframe_interval=3: frame0 keyframe (reset
	// counter), frame1 delta (count=1), frame2 delta (count=2), frame3
	// keyframe (count reached 3, reset), frame4 delta (count=1).
}

func TestEncode_fieldsAreIndependent(t *testing.T) {
	s := NewState(8, 0)
	dst := make([]byte, 8)

	// Seed field 0 with a different reference than field 1.
	s.Encode(identityCompressor{}, fill(0xAA, 8), 0, dst)
	s.Encode(identityCompressor{}, fill(0x11, 8), 1, dst)

	// Field 1's next frame must delta against 0x11, not field 0's 0xAA.
	n, isDelta, err := s.Encode(identityCompressor{}, fill(0x13, 8), 1, dst)
	if err != nil {
		t.Fatal(err)
	}
	if !isDelta {
		t.Fatal("expected a delta frame")
	}
	want := byte(0x13 - 0x11)
	for i := 0; i < n; i++ {
		if dst[i] != want {
			t.Fatalf("delta[%d] = %#x, want %#x (field 1 must not reference field 0's previous frame)", i, dst[i], want)
		}
	}
}

func TestReconstruct_wrappingRoundTrip(t *testing.T) {
	prev := []byte{0, 10, 250, 255}
	src := []byte{5, 5, 10, 0} // wraps at indices 2 and 3
	delta := make([]byte, len(src))
	for i := range src {
		delta[i] = src[i] - prev[i]
	}
	got := make([]byte, len(src))
	Reconstruct(got, delta, prev)
	for i := range src {
		if got[i] != src[i] {
			t.Errorf("reconstruct[%d] = %d, want %d", i, got[i], src[i])
		}
	}
}
