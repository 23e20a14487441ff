// Package health implements the rolling health window (component D): two
// fixed-capacity ring buffers tracking round-trip sync wait and VRAM-ready
// rate, feeding dynamic stall thresholds for the pacer (internal/pacer).
package health

import "sort"

// Window is the ring-buffer capacity shared by both samples.
const Window = 128

// State is a rolling window over the most recent Window frames' sync-wait
// latency and VRAM-ready outcome. It is owned by one Output Connection and
// is not safe for concurrent use.
type State struct {
	syncWaitMs [Window]float64
	syncCount  int
	syncHead   int

	vramReady  [Window]bool
	readyCount int
	readyHead  int

	trueCount int // running count of true samples within the active vramReady prefix
}

// New returns an empty health window.
func New() *State {
	return &State{}
}

// Record appends a submitted-frame sample: the round-trip sync wait in
// milliseconds and the VRAM-ready flag observed alongside it.
func (s *State) Record(syncWaitMs float64, vramReady bool) {
	s.recordSyncWait(syncWaitMs)
	s.RecordReady(vramReady)
}

// RecordReady appends a tick's VRAM-ready sample without an associated sync
// wait measurement.
func (s *State) RecordReady(vramReady bool) {
	if s.readyCount == Window {
		if s.vramReady[s.readyHead] {
			s.trueCount--
		}
	} else {
		s.readyCount++
	}
	s.vramReady[s.readyHead] = vramReady
	if vramReady {
		s.trueCount++
	}
	s.readyHead = (s.readyHead + 1) % Window
}

func (s *State) recordSyncWait(ms float64) {
	if s.syncCount < Window {
		s.syncCount++
	}
	s.syncWaitMs[s.syncHead] = ms
	s.syncHead = (s.syncHead + 1) % Window
}

// AvgSyncWaitMs returns the arithmetic mean of the populated sync-wait
// prefix, or 0 if no samples have been recorded.
func (s *State) AvgSyncWaitMs() float64 {
	if s.syncCount == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < s.syncCount; i++ {
		sum += s.syncWaitMs[i]
	}
	return sum / float64(s.syncCount)
}

// P95SyncWaitMs returns the element at index min(n-1, (n*95)/100) of the
// sorted active sync-wait prefix, or 0 if no samples have been recorded.
func (s *State) P95SyncWaitMs() float64 {
	n := s.syncCount
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, s.syncWaitMs[:n])
	sort.Float64s(sorted)
	idx := (n * 95) / 100
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

// VramReadyRate returns the fraction of recorded VRAM-ready samples that
// were true, in [0,1], or 0 if no samples have been recorded.
func (s *State) VramReadyRate() float64 {
	if s.readyCount == 0 {
		return 0
	}
	return float64(s.trueCount) / float64(s.readyCount)
}

// StallThreshold returns max(3*periodMs, 2*p95SyncWaitMs), the dynamic
// threshold above which a sync wait should be treated as stall-suspicious.
func (s *State) StallThreshold(periodMs float64) float64 {
	fromPeriod := 3 * periodMs
	fromP95 := 2 * s.P95SyncWaitMs()
	if fromP95 > fromPeriod {
		return fromP95
	}
	return fromPeriod
}

// Snapshot is an immutable view of a State's derived metrics, safe to pass
// to a metrics collector (internal/metrics) without holding a reference
// into the live ring buffers.
type Snapshot struct {
	AvgSyncWaitMs  float64
	P95SyncWaitMs  float64
	VramReadyRate  float64
	SampleCount    int
}

// Snapshot returns a value copy of s's current derived metrics.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		AvgSyncWaitMs: s.AvgSyncWaitMs(),
		P95SyncWaitMs: s.P95SyncWaitMs(),
		VramReadyRate: s.VramReadyRate(),
		SampleCount:   s.syncCount,
	}
}
