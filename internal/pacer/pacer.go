package pacer

import (
	"time"

	"github.com/groovymister/gomister/internal/health"
	"github.com/groovymister/gomister/internal/protocol"
)

// Outcome is begin_frame's user-visible result.
type Outcome int

const (
	// Ready means the caller should submit the next frame now.
	Ready Outcome = iota
	// Skip means transient backpressure (VRAM not ready); the caller must
	// not submit this tick.
	Skip
	// Stalled means the FPGA has been unresponsive for three consecutive
	// syncs past settle, or 60 consecutive skips; the caller should close
	// and reconnect.
	Stalled
)

func (o Outcome) String() string {
	switch o {
	case Ready:
		return "ready"
	case Skip:
		return "skip"
	case Stalled:
		return "stalled"
	default:
		return "unknown"
	}
}

// SyncSource is the subset of the Output Connection (component E) the
// pacer drives: requesting a sync and reading the latest status snapshot
// it produced.
type SyncSource interface {
	WaitSync(timeoutMs int) bool
	Status() protocol.FpgaStatus
}

// Config holds the pacer's tunable thresholds. Zero-value Config is not
// usable; use DefaultConfig.
type Config struct {
	SettleFrames          uint32
	MaxConsecutiveTimeout int
	MaxConsecutiveDrops   int
	SettleTimeoutMs       int
	SteadyTimeoutMs       int
}

// DefaultConfig returns the constants specified in §3/§4.F.
func DefaultConfig() Config {
	return Config{
		SettleFrames:          30,
		MaxConsecutiveTimeout: 3,
		MaxConsecutiveDrops:   60,
		SettleTimeoutMs:       50,
		SteadyTimeoutMs:       16,
	}
}

// State is the pacer's mutable state (§3 PacerState), composed of the
// drift controller (pure), the precision sleeper (side-effecting), and the
// backpressure observer (a status read through SyncSource).
type State struct {
	cfg    Config
	timing protocol.FrameTiming
	health *health.State

	clientFrame          uint32
	lastPaceNs           time.Time
	lastReadyNs          time.Time
	anchored             bool
	droppedFrames        uint64
	consecutiveTimeouts  int
	consecutiveDrops     int

	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a pacer for the given timing, recording sync-wait samples
// into window.
func New(timing protocol.FrameTiming, window *health.State) *State {
	return &State{
		cfg:    DefaultConfig(),
		timing: timing,
		health: window,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// SetTiming refreshes the pacer's timing, e.g. after a switch_res.
func (s *State) SetTiming(timing protocol.FrameTiming) { s.timing = timing }

// ClientFrame returns the pacer's current frame counter.
func (s *State) ClientFrame() uint32 { return s.clientFrame }

// DroppedFrames returns the monotonic count of frames credited as really
// dropped (as opposed to skipped for backpressure).
func (s *State) DroppedFrames() uint64 { return s.droppedFrames }

// ConsecutiveTimeouts and ConsecutiveDrops expose the pacer's stall
// counters, primarily for the metrics collector (internal/metrics).
func (s *State) ConsecutiveTimeouts() int { return s.consecutiveTimeouts }
func (s *State) ConsecutiveDrops() int    { return s.consecutiveDrops }

func (s *State) settled() bool { return s.clientFrame >= s.cfg.SettleFrames }

// BeginFrame runs one iteration of the pacing loop against conn and returns
// the outcome the caller must act on.
func (s *State) BeginFrame(conn SyncSource) Outcome {
	if s.timing.FrameTimeNs == 0 {
		return Stalled
	}

	timeoutMs := s.cfg.SteadyTimeoutMs
	if !s.settled() {
		timeoutMs = s.cfg.SettleTimeoutMs
	}

	t0 := s.now()
	acked := conn.WaitSync(timeoutMs)
	elapsed := s.now().Sub(t0)

	if !acked {
		s.consecutiveTimeouts++
		if s.settled() && s.consecutiveTimeouts >= s.cfg.MaxConsecutiveTimeout {
			return Stalled
		}
		s.sleep(time.Duration(s.timing.FrameTimeNs) * time.Nanosecond)
		s.clientFrame++
		return Ready
	}

	s.consecutiveTimeouts = 0
	if s.health != nil {
		s.health.Record(float64(elapsed)/float64(time.Millisecond), conn.Status().VramReady)
	}

	status := conn.Status()
	if !status.VramReady {
		s.consecutiveDrops++
		if s.consecutiveDrops >= s.cfg.MaxConsecutiveDrops {
			return Stalled
		}
		return Skip
	}
	s.consecutiveDrops = 0

	mult := ComputePaceMultiplier(s.clientFrame, status.Frame, s.timing.Interlaced, s.clientFrame&1 == 1, status.VgaF1, s.timing.FrameTimeNs)

	now := s.now()
	if !s.anchored {
		s.lastPaceNs = now
		s.lastReadyNs = now
		s.anchored = true
	}

	if gap := now.Sub(s.lastReadyNs); gap > time.Duration(float64(s.timing.FrameTimeNs)*1.5)*time.Nanosecond {
		frames := int64(gap/time.Nanosecond) / s.timing.FrameTimeNs
		if frames > 1 {
			s.droppedFrames += uint64(frames - 1)
		}
	}

	target := s.lastPaceNs.Add(time.Duration(float64(s.timing.FrameTimeNs)*mult) * time.Nanosecond)
	preciseSleepUntil(s.now, s.sleep, target)

	s.lastPaceNs = target
	s.lastReadyNs = s.now()
	s.clientFrame++

	return Ready
}

// preciseSleepUntil sleeps until target using a coarse 2ms sleep followed by
// a tight spin-wait for the remainder, matching §5's "coarse sleep + spin
// wait" suspension point. now and sleep are injected so tests do not need
// to wait on the wall clock.
func preciseSleepUntil(now func() time.Time, sleep func(time.Duration), target time.Time) {
	const coarseStep = 2 * time.Millisecond
	for {
		remaining := target.Sub(now())
		if remaining <= 0 {
			return
		}
		if remaining > coarseStep {
			sleep(coarseStep)
			continue
		}
		break
	}
	for now().Before(target) {
		// spin-wait for sub-millisecond precision
	}
}
