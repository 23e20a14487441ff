package pacer

// Tuning constants. target_drift keeps the host three frames ahead of the
// FPGA, absorbing jitter without starving the scanout. drift_gain gives a
// first-order response converging in roughly 1s at 60Hz; the phase gain's
// coupling to 3/field_rate is the eigenvalue condition for simultaneous
// drift-and-phase convergence.
const (
	TargetDrift  = 3.0
	DriftGain    = 0.02
	MultiplierLo = 0.92
	MultiplierHi = 1.05
)

// ComputePaceMultiplier is the pure drift controller. drift is the client's
// frame counter minus the FPGA's last-echoed frame counter; interlaced
// callers additionally pass the current field parity and the FPGA's
// reported field (vga_f1) so a phase mismatch nudges the multiplier beyond
// the plain drift correction.
func ComputePaceMultiplier(clientFrame, fpgaFrame uint32, interlaced bool, expectedF1, actualF1 bool, frameTimeNs int64) float64 {
	drift := float64(int64(clientFrame) - int64(fpgaFrame))
	err := TargetDrift - drift
	mult := 1 - err*DriftGain

	if interlaced && expectedF1 != actualF1 && frameTimeNs > 0 {
		fieldRateHz := 1e9 / float64(frameTimeNs)
		phaseGain := DriftGain + 3/fieldRateHz
		mult -= phaseGain
	}

	if mult < MultiplierLo {
		mult = MultiplierLo
	}
	if mult > MultiplierHi {
		mult = MultiplierHi
	}
	return mult
}
