// Package pacer implements the CRT sync and frame-pacing component (F): the
// pure timing primitives (raster offset, optimal vsync scanline) and the
// library-owned pacing loop with drift control, interlaced field-phase
// correction, precision sleep, and stall/skip reporting.
package pacer

import "github.com/groovymister/gomister/internal/protocol"

// RasterOffsetNs computes the signed nanosecond difference between where the
// FPGA scanout currently is and where the host predicts it should be.
// Positive means the FPGA is behind (headroom); negative means the host is
// late. Returns 0 if the status's echoed frame does not match the frame the
// host submitted (the FPGA has not processed it yet).
func RasterOffsetNs(timing protocol.FrameTiming, status protocol.FpgaStatus, submittedFrame uint32) int64 {
	if status.FrameEcho != submittedFrame {
		return 0
	}
	interlace := int64(0)
	if timing.Interlaced {
		interlace = 1
	}
	vTotal := int64(timing.VTotal)
	v1 := (int64(status.FrameEcho-1)*vTotal + int64(status.VcountEcho)) >> interlace
	v2 := (int64(status.Frame)*vTotal + int64(status.Vcount)) >> interlace

	// Dichotomic damping: a first-order low-pass on the raw raster
	// difference, intentionally halved (and truncated) rather than applied
	// in full.
	dif := (v1 - v2) / 2
	return timing.LineTimeNs * dif
}

// CalcVsyncLine returns the scanline at which a blit should request vsync so
// it lands just before the FPGA needs the new frame, given the round-trip
// ping, a safety margin, host emulation time, and the time needed to stream
// the frame, all in nanoseconds. The result is always in [1, v_total].
func CalcVsyncLine(timing protocol.FrameTiming, pingNs, marginNs, emulationNs, streamNs int64) uint16 {
	budget := pingNs + marginNs + emulationNs
	if budget >= timing.FrameTimeNs {
		return 1
	}
	timeCalc := budget - streamNs
	if timeCalc < 0 {
		timeCalc = 0
	}
	vTotal := int64(timing.VTotal)
	line := vTotal - (vTotal*timeCalc)/timing.FrameTimeNs
	return uint16(clampInt64(line, 1, vTotal))
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
