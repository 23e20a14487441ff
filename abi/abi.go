// Command abi builds as a C archive/shared library (buildmode=c-archive or
// c-shared): the thin C ABI adapter around the Go-native gmz surface. It
// marshals opaque handles and fixed-layout structs; every behavior it
// exposes is implemented by package gmz, not reimplemented here.
package main

/*
#include <stdint.h>

typedef struct __attribute__((packed)) {
	uint32_t frame_echo;
	uint16_t vcount_echo;
	uint32_t frame;
	uint16_t vcount;
	uint8_t  flags;
	uint8_t  pad[3];
	uint32_t client_frame;
	uint32_t dropped_frames;
	uint32_t consecutive_timeouts;
	uint32_t consecutive_drops;
	double   avg_sync_wait_ms;
	double   p95_sync_wait_ms;
	double   vram_ready_rate;
} gmz_state_t;

typedef struct __attribute__((packed)) {
	double   pixel_clock;
	uint16_t h_active;
	uint16_t h_begin;
	uint16_t h_end;
	uint16_t h_total;
	uint16_t v_active;
	uint16_t v_begin;
	uint16_t v_end;
	uint16_t v_total;
	uint8_t  interlaced;
	uint8_t  pad[7];
} gmz_modeline_t;
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/groovymister/gomister/internal/input"
	"github.com/groovymister/gomister/internal/protocol"

	"github.com/groovymister/gomister/gmz"
)

const (
	flagVramReady    = 1 << 0
	flagVramEndFrame = 1 << 1
	flagVramSynced   = 1 << 2
	flagVgaFrameskip = 1 << 3
	flagVgaVblank    = 1 << 4
	flagVgaF1        = 1 << 5
	flagAudioActive  = 1 << 6
	flagVramQueue    = 1 << 7
)

// conn bundles everything one gmz_conn_t handle owns: the output channel
// and the pacer driving it.
type conn struct {
	out    *gmz.OutputConn
	pacer  *gmz.Pacer
	timing gmz.FrameTiming
}

// inputConn bundles an input.Conn behind its own handle namespace, since
// gmz_input_* operates on a distinct opaque type from gmz_conn_t.
type inputConn struct {
	in *input.Conn
}

func main() {}

//export gmz_connect
func gmz_connect(host *C.char, mtu C.int, rgbMode C.int, soundRate C.int, soundChannels C.int) C.uintptr_t {
	return gmz_connect_ex(host, mtu, rgbMode, soundRate, soundChannels, C.int(protocol.LZ4ModeOff))
}

//export gmz_connect_ex
func gmz_connect_ex(host *C.char, mtu C.int, rgbMode C.int, soundRate C.int, soundChannels C.int, lz4Mode C.int) C.uintptr_t {
	if host == nil {
		return 0
	}
	rgb := protocol.RGBMode(rgbMode)
	rate := protocol.SoundRate(soundRate)
	channels := protocol.SoundChannels(soundChannels)
	mode := protocol.LZ4Mode(lz4Mode)

	out, err := gmz.OpenOutput(gmz.OutputConfig{
		Host:          C.GoString(host),
		MTU:           int(mtu),
		RGBMode:       rgb,
		SoundRate:     rate,
		SoundChannels: channels,
		LZ4Mode:       mode,
		MaxFrameSize:  1024 * 1024,
	})
	if err != nil {
		return 0
	}
	if err := out.SendInit(); err != nil {
		out.Close()
		return 0
	}

	c := &conn{out: out, pacer: gmz.NewPacer(gmz.FrameTiming{}, gmz.NewHealthWindow())}
	h := cgo.NewHandle(c)
	return C.uintptr_t(h)
}

//export gmz_disconnect
func gmz_disconnect(handle C.uintptr_t) {
	if handle == 0 {
		return
	}
	h := cgo.Handle(handle)
	v := h.Value()
	h.Delete()
	if c, ok := v.(*conn); ok {
		c.out.Close()
	}
}

//export gmz_set_modeline
func gmz_set_modeline(handle C.uintptr_t, modeline *C.gmz_modeline_t) C.int {
	c, ok := connFor(handle)
	if !ok || modeline == nil {
		return -1
	}
	m := gmz.Modeline{
		PixelClock: float64(modeline.pixel_clock),
		HActive:    uint16(modeline.h_active),
		HBegin:     uint16(modeline.h_begin),
		HEnd:       uint16(modeline.h_end),
		HTotal:     uint16(modeline.h_total),
		VActive:    uint16(modeline.v_active),
		VBegin:     uint16(modeline.v_begin),
		VEnd:       uint16(modeline.v_end),
		VTotal:     uint16(modeline.v_total),
		Interlaced: modeline.interlaced != 0,
	}
	timing, err := c.out.SwitchRes(m)
	if err != nil {
		return -1
	}
	c.timing = timing
	c.pacer.SetTiming(timing)
	return 0
}

//export gmz_submit
func gmz_submit(handle C.uintptr_t, data *C.uint8_t, length C.int, frameNum C.uint32_t, field C.uint8_t, vsyncLine C.uint16_t) C.int {
	c, ok := connFor(handle)
	if !ok {
		return -1
	}
	var buf []byte
	if length > 0 && data != nil {
		buf = unsafe.Slice((*byte)(data), int(length))
	}
	if err := c.out.SendFrame(buf, uint32(frameNum), byte(field), uint16(vsyncLine)); err != nil {
		return -1
	}
	return 0
}

//export gmz_submit_audio
func gmz_submit_audio(handle C.uintptr_t, pcm *C.uint8_t, length C.int) C.int {
	c, ok := connFor(handle)
	if !ok {
		return -1
	}
	var buf []byte
	if length > 0 && pcm != nil {
		buf = unsafe.Slice((*byte)(pcm), int(length))
	}
	if err := c.out.SendAudio(buf); err != nil {
		return -1
	}
	return 0
}

//export gmz_wait_sync
func gmz_wait_sync(handle C.uintptr_t, timeoutMs C.int) C.int {
	c, ok := connFor(handle)
	if !ok {
		return -1
	}
	if c.out.WaitSync(int(timeoutMs)) {
		return 0
	}
	return 1
}

//export gmz_begin_frame
func gmz_begin_frame(handle C.uintptr_t) C.int {
	c, ok := connFor(handle)
	if !ok {
		return 1
	}
	switch c.pacer.BeginFrame(c.out) {
	case gmz.PacerReady:
		return 0
	case gmz.PacerSkip:
		return 2
	default:
		return 1
	}
}

//export gmz_tick
func gmz_tick(handle C.uintptr_t, out *C.gmz_state_t) C.int {
	c, ok := connFor(handle)
	if !ok || out == nil {
		return -1
	}
	c.out.Poll()
	status := c.out.Status()

	var flags C.uint8_t
	if status.VramReady {
		flags |= flagVramReady
	}
	if status.VramEndFrame {
		flags |= flagVramEndFrame
	}
	if status.VramSynced {
		flags |= flagVramSynced
	}
	if status.VgaFrameskip {
		flags |= flagVgaFrameskip
	}
	if status.VgaVblank {
		flags |= flagVgaVblank
	}
	if status.VgaF1 {
		flags |= flagVgaF1
	}
	if status.AudioActive {
		flags |= flagAudioActive
	}
	if status.VramQueue {
		flags |= flagVramQueue
	}

	out.frame_echo = C.uint32_t(status.FrameEcho)
	out.vcount_echo = C.uint16_t(status.VcountEcho)
	out.frame = C.uint32_t(status.Frame)
	out.vcount = C.uint16_t(status.Vcount)
	out.flags = flags
	out.client_frame = C.uint32_t(c.pacer.ClientFrame())
	out.dropped_frames = C.uint32_t(c.pacer.DroppedFrames())
	out.consecutive_timeouts = C.uint32_t(c.pacer.ConsecutiveTimeouts())
	out.consecutive_drops = C.uint32_t(c.pacer.ConsecutiveDrops())
	return 0
}

//export gmz_frame_time_ns
func gmz_frame_time_ns(handle C.uintptr_t) C.int64_t {
	c, ok := connFor(handle)
	if !ok {
		return 0
	}
	return C.int64_t(c.timing.FrameTimeNs)
}

//export gmz_raster_offset_ns
func gmz_raster_offset_ns(handle C.uintptr_t, submittedFrame C.uint32_t) C.int64_t {
	c, ok := connFor(handle)
	if !ok {
		return 0
	}
	return C.int64_t(gmz.RasterOffsetNs(c.timing, c.out.Status(), uint32(submittedFrame)))
}

//export gmz_calc_vsync
func gmz_calc_vsync(handle C.uintptr_t, pingNs, marginNs, emulationNs, streamNs C.int64_t) C.uint16_t {
	c, ok := connFor(handle)
	if !ok {
		return 0
	}
	if c.timing.FrameTimeNs == 0 {
		return C.uint16_t(c.timing.VTotal / 2)
	}
	return C.uint16_t(gmz.CalcVsyncLine(c.timing, int64(pingNs), int64(marginNs), int64(emulationNs), int64(streamNs)))
}

//export gmz_version
func gmz_version() *C.char {
	return C.CString(gmz.Version)
}

//export gmz_version_major
func gmz_version_major() C.int { return C.int(gmz.VersionMajor) }

//export gmz_version_minor
func gmz_version_minor() C.int { return C.int(gmz.VersionMinor) }

//export gmz_version_patch
func gmz_version_patch() C.int { return C.int(gmz.VersionPatch) }

func connFor(handle C.uintptr_t) (*conn, bool) {
	if handle == 0 {
		return nil, false
	}
	h := cgo.Handle(handle)
	c, ok := h.Value().(*conn)
	return c, ok
}

//export gmz_input_bind
func gmz_input_bind(host *C.char, port C.int) C.uintptr_t {
	if host == nil {
		return 0
	}
	in, err := gmz.OpenInput(C.GoString(host), int(port))
	if err != nil {
		return 0
	}
	h := cgo.NewHandle(&inputConn{in: in})
	return C.uintptr_t(h)
}

//export gmz_input_close
func gmz_input_close(handle C.uintptr_t) {
	if handle == 0 {
		return
	}
	h := cgo.Handle(handle)
	v := h.Value()
	h.Delete()
	if ic, ok := v.(*inputConn); ok {
		ic.in.Close()
	}
}

//export gmz_input_poll
func gmz_input_poll(handle C.uintptr_t) C.int {
	ic, ok := inputConnFor(handle)
	if !ok {
		return -1
	}
	return C.int(ic.in.Poll())
}

//export gmz_input_joy
func gmz_input_joy(handle C.uintptr_t, frame *C.uint32_t, order *C.uint8_t, joy1, joy2 *C.uint16_t, axes *C.int8_t) C.int {
	ic, ok := inputConnFor(handle)
	if !ok {
		return -1
	}
	j, have := ic.in.Joystick()
	if !have {
		return 1
	}
	if frame != nil {
		*frame = C.uint32_t(j.Frame)
	}
	if order != nil {
		*order = C.uint8_t(j.Order)
	}
	if joy1 != nil {
		*joy1 = C.uint16_t(j.Joy1)
	}
	if joy2 != nil {
		*joy2 = C.uint16_t(j.Joy2)
	}
	if axes != nil {
		axesSlice := unsafe.Slice((*int8)(axes), 8)
		for i := 0; i < 8; i++ {
			axesSlice[i] = j.Axes[i]
		}
	}
	return 0
}

//export gmz_input_ps2
func gmz_input_ps2(handle C.uintptr_t, frame *C.uint32_t, order *C.uint8_t, keys *C.uint8_t, mouseBtns *C.uint8_t, mouseX, mouseY, mouseZ *C.int8_t) C.int {
	ic, ok := inputConnFor(handle)
	if !ok {
		return -1
	}
	p, have := ic.in.Ps2()
	if !have {
		return 1
	}
	if frame != nil {
		*frame = C.uint32_t(p.Frame)
	}
	if order != nil {
		*order = C.uint8_t(p.Order)
	}
	if keys != nil {
		keysSlice := unsafe.Slice((*byte)(keys), 32)
		copy(keysSlice, p.Keys[:])
	}
	if mouseBtns != nil {
		*mouseBtns = C.uint8_t(p.MouseBtns)
	}
	if mouseX != nil {
		*mouseX = C.int8_t(p.MouseX)
	}
	if mouseY != nil {
		*mouseY = C.int8_t(p.MouseY)
	}
	if mouseZ != nil {
		*mouseZ = C.int8_t(p.MouseZ)
	}
	return 0
}

func inputConnFor(handle C.uintptr_t) (*inputConn, bool) {
	if handle == 0 {
		return nil, false
	}
	h := cgo.Handle(handle)
	ic, ok := h.Value().(*inputConn)
	return ic, ok
}
