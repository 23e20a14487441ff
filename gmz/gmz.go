// Package gmz is the Go-native surface of the library: the normal way a Go
// program drives the output and input channels to a Groovy_MiSTer host.
// The C ABI in package abi is a consumer of this same surface, not a
// parallel implementation.
package gmz

import (
	"fmt"

	"github.com/groovymister/gomister/internal/health"
	"github.com/groovymister/gomister/internal/input"
	"github.com/groovymister/gomister/internal/output"
	"github.com/groovymister/gomister/internal/pacer"
	"github.com/groovymister/gomister/internal/protocol"
)

// Version identifies this build of the library, reported to callers via
// the C ABI's gmz_version family and available here for Go callers too.
const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
)

// Version is the "major.minor.patch" rendering of the constants above.
var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)

// OutputConn is the output channel: commands, frames, and audio to the FPGA
// on port 32100, plus the status snapshot it echoes back.
type OutputConn = output.Conn

// OutputConfig configures OutputConn.
type OutputConfig = output.Config

// InputConn is the input channel: joystick and PS/2 state from the FPGA on
// port 32101.
type InputConn = input.Conn

// Pacer drives the output side's frame cadence against the FPGA's real
// sync signal.
type Pacer = pacer.State

// PacerOutcome is what the caller should do after a Pacer.BeginFrame call.
type PacerOutcome = pacer.Outcome

const (
	PacerReady   = pacer.Ready
	PacerSkip    = pacer.Skip
	PacerStalled = pacer.Stalled
)

// Modeline and FrameTiming describe the display mode currently active.
type Modeline = protocol.Modeline
type FrameTiming = protocol.FrameTiming

// FpgaStatus is the decoded status ACK.
type FpgaStatus = protocol.FpgaStatus

// JoystickState and Ps2State are the decoded input snapshots.
type JoystickState = protocol.JoystickState
type Ps2State = protocol.Ps2State

// RGBMode, SoundRate, SoundChannels, and LZ4Mode select init-time behavior.
type RGBMode = protocol.RGBMode
type SoundRate = protocol.SoundRate
type SoundChannels = protocol.SoundChannels
type LZ4Mode = protocol.LZ4Mode

const (
	RGBBGR888   = protocol.RGBBGR888
	RGBBGRA8888 = protocol.RGBBGRA8888
	RGBRGB565   = protocol.RGBRGB565

	SoundRateOff   = protocol.SoundRateOff
	SoundRate22050 = protocol.SoundRate22050
	SoundRate44100 = protocol.SoundRate44100
	SoundRate48000 = protocol.SoundRate48000

	SoundChannelsOff    = protocol.SoundChannelsOff
	SoundChannelsMono   = protocol.SoundChannelsMono
	SoundChannelsStereo = protocol.SoundChannelsStereo

	LZ4ModeOff           = protocol.LZ4ModeOff
	LZ4ModeLZ4           = protocol.LZ4ModeLZ4
	LZ4ModeLZ4Delta      = protocol.LZ4ModeLZ4Delta
	LZ4ModeLZ4HC         = protocol.LZ4ModeLZ4HC
	LZ4ModeLZ4HCDelta    = protocol.LZ4ModeLZ4HCDelta
	LZ4ModeAdaptive      = protocol.LZ4ModeAdaptive
	LZ4ModeAdaptiveDelta = protocol.LZ4ModeAdaptiveDelta
)

// OpenOutput dials the output channel described by cfg.
func OpenOutput(cfg OutputConfig) (*OutputConn, error) { return output.Open(cfg) }

// OpenInput binds the input channel on host, sending the FPGA the hello
// byte that starts streaming. port of 0 selects input.DefaultPort.
func OpenInput(host string, port int) (*InputConn, error) { return input.Open(host, port) }

// NewPacer returns a pacer for timing, recording sync-wait samples into
// window.
func NewPacer(timing FrameTiming, window *health.State) *Pacer { return pacer.New(timing, window) }

// NewHealthWindow returns an empty rolling health window (component D).
func NewHealthWindow() *health.State { return health.New() }

// FrameTimingFor computes a Modeline's per-frame and per-line periods.
func FrameTimingFor(m Modeline) FrameTiming { return protocol.FrameTimingFor(m) }

// CalcVsyncLine picks the scanline at which a frame submitted now can still
// reach the FPGA before its intended vsync, given the caller's estimated
// network, margin, emulation, and streaming latencies (all nanoseconds).
func CalcVsyncLine(timing FrameTiming, pingNs, marginNs, emulationNs, streamNs int64) uint16 {
	return pacer.CalcVsyncLine(timing, pingNs, marginNs, emulationNs, streamNs)
}

// RasterOffsetNs estimates the FPGA's scanout position relative to
// submittedFrame's echoed ACK: positive means the FPGA is behind (headroom),
// negative means the host is late. It is 0 when the ACK does not echo
// submittedFrame.
func RasterOffsetNs(timing FrameTiming, status FpgaStatus, submittedFrame uint32) int64 {
	return pacer.RasterOffsetNs(timing, status, submittedFrame)
}
