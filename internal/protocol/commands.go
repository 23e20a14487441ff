package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Command opcodes. The first byte of every command packet identifies the kind.
const (
	OpClose       byte = 1
	OpInit        byte = 2
	OpSwitchRes   byte = 3
	OpAudio       byte = 4
	OpGetStatus   byte = 5
	OpBlit        byte = 7
	OpGetVersion  byte = 8
)

// RGBMode selects the FPGA's pixel format.
type RGBMode byte

const (
	RGBBGR888   RGBMode = 0
	RGBBGRA8888 RGBMode = 1
	RGBRGB565   RGBMode = 2
)

func (m RGBMode) valid() bool { return m <= RGBRGB565 }

// SoundRate selects the PCM sample rate advertised to the FPGA.
type SoundRate byte

const (
	SoundRateOff   SoundRate = 0
	SoundRate22050 SoundRate = 1
	SoundRate44100 SoundRate = 2
	SoundRate48000 SoundRate = 3
)

func (r SoundRate) valid() bool { return r <= SoundRate48000 }

// SoundChannels selects mono/stereo PCM.
type SoundChannels byte

const (
	SoundChannelsOff    SoundChannels = 0
	SoundChannelsMono   SoundChannels = 1
	SoundChannelsStereo SoundChannels = 2
)

func (c SoundChannels) valid() bool { return c <= SoundChannelsStereo }

// LZ4Mode selects the host-side compression strategy. Every value above
// LZ4ModeOff advertises the wire's single LZ4-on bit (see WireLZ4Bit); the
// distinction between lz4/lz4_delta/lz4_hc/... is host-only.
type LZ4Mode byte

const (
	LZ4ModeOff           LZ4Mode = 0
	LZ4ModeLZ4           LZ4Mode = 1
	LZ4ModeLZ4Delta      LZ4Mode = 2
	LZ4ModeLZ4HC         LZ4Mode = 3
	LZ4ModeLZ4HCDelta    LZ4Mode = 4
	LZ4ModeAdaptive      LZ4Mode = 5
	LZ4ModeAdaptiveDelta LZ4Mode = 6
)

func (m LZ4Mode) valid() bool { return m <= LZ4ModeAdaptiveDelta }

// IsDelta reports whether m implies the delta encoder wraps the LZ4 codec.
func (m LZ4Mode) IsDelta() bool {
	switch m {
	case LZ4ModeLZ4Delta, LZ4ModeLZ4HCDelta, LZ4ModeAdaptiveDelta:
		return true
	default:
		return false
	}
}

// UsesHC reports whether m starts out using the LZ4 high-compression block mode.
func (m LZ4Mode) UsesHC() bool {
	switch m {
	case LZ4ModeLZ4HC, LZ4ModeLZ4HCDelta:
		return true
	default:
		return false
	}
}

// IsAdaptive reports whether m may switch block mode at runtime based on
// compression latency (see internal/lz4codec).
func (m LZ4Mode) IsAdaptive() bool {
	switch m {
	case LZ4ModeAdaptive, LZ4ModeAdaptiveDelta:
		return true
	default:
		return false
	}
}

// WireLZ4Bit returns the single on-wire LZ4 byte for m: 1 if any LZ4 mode is
// selected, 0 otherwise. The FPGA firmware clamps compression to one bit;
// every other distinction LZ4Mode makes is a host-side choice.
func (m LZ4Mode) WireLZ4Bit() byte {
	if m == LZ4ModeOff {
		return 0
	}
	return 1
}

// EncodeClose builds the 1-byte close command.
func EncodeClose() []byte {
	return []byte{OpClose}
}

// EncodeGetStatus builds the 1-byte get_status command.
func EncodeGetStatus() []byte {
	return []byte{OpGetStatus}
}

// EncodeGetVersion builds the 1-byte get_version command. It shares the
// get_status wire shape; any reply is parsed as an ordinary 13-byte ACK.
func EncodeGetVersion() []byte {
	return []byte{OpGetVersion}
}

// EncodeInit builds the 5-byte init command. Returns an error if any
// enumeration value is invalid; invalid values must reject connection
// establishment rather than be sent.
func EncodeInit(lz4Mode LZ4Mode, rate SoundRate, channels SoundChannels, rgb RGBMode) ([]byte, error) {
	if !lz4Mode.valid() {
		return nil, fmt.Errorf("protocol: invalid lz4 mode %d", lz4Mode)
	}
	if !rate.valid() {
		return nil, fmt.Errorf("protocol: invalid sound rate %d", rate)
	}
	if !channels.valid() {
		return nil, fmt.Errorf("protocol: invalid sound channels %d", channels)
	}
	if !rgb.valid() {
		return nil, fmt.Errorf("protocol: invalid rgb mode %d", rgb)
	}
	buf := make([]byte, 5)
	buf[0] = OpInit
	buf[1] = lz4Mode.WireLZ4Bit()
	buf[2] = byte(rate)
	buf[3] = byte(channels)
	buf[4] = byte(rgb)
	return buf, nil
}

// EncodeSwitchRes builds the 26-byte switch_res command from a validated Modeline.
func EncodeSwitchRes(m Modeline) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, 26)
	buf[0] = OpSwitchRes
	binary.LittleEndian.PutUint64(buf[1:9], math.Float64bits(m.PixelClock))
	binary.LittleEndian.PutUint16(buf[9:11], m.HActive)
	binary.LittleEndian.PutUint16(buf[11:13], m.HBegin)
	binary.LittleEndian.PutUint16(buf[13:15], m.HEnd)
	binary.LittleEndian.PutUint16(buf[15:17], m.HTotal)
	binary.LittleEndian.PutUint16(buf[17:19], m.VActive)
	binary.LittleEndian.PutUint16(buf[19:21], m.VBegin)
	binary.LittleEndian.PutUint16(buf[21:23], m.VEnd)
	binary.LittleEndian.PutUint16(buf[23:25], m.VTotal)
	if m.Interlaced {
		buf[25] = 1
	}
	return buf, nil
}

// EncodeAudioHeader builds the 3-byte audio header. sampleBytes is the
// length of the PCM payload that follows in subsequent fragments.
func EncodeAudioHeader(sampleBytes uint16) []byte {
	buf := make([]byte, 3)
	buf[0] = OpAudio
	binary.LittleEndian.PutUint16(buf[1:3], sampleBytes)
	return buf
}

// BlitHeaderRaw builds the 8-byte raw blit header.
func BlitHeaderRaw(frameNum uint32, field byte, vsyncLine uint16) []byte {
	buf := make([]byte, 8)
	buf[0] = OpBlit
	binary.LittleEndian.PutUint32(buf[1:5], frameNum)
	buf[5] = field
	binary.LittleEndian.PutUint16(buf[6:8], vsyncLine)
	return buf
}

// BlitHeaderLZ4 builds the 12-byte LZ4 blit header. Its first 8 bytes equal
// BlitHeaderRaw's output for the same arguments.
func BlitHeaderLZ4(frameNum uint32, field byte, vsyncLine uint16, compressedSize uint32) []byte {
	buf := make([]byte, 12)
	copy(buf, BlitHeaderRaw(frameNum, field, vsyncLine))
	binary.LittleEndian.PutUint32(buf[8:12], compressedSize)
	return buf
}

// BlitHeaderLZ4Delta builds the 13-byte LZ4-delta blit header. Its first 12
// bytes equal BlitHeaderLZ4's output for the same arguments.
func BlitHeaderLZ4Delta(frameNum uint32, field byte, vsyncLine uint16, compressedSize uint32) []byte {
	buf := make([]byte, 13)
	copy(buf, BlitHeaderLZ4(frameNum, field, vsyncLine, compressedSize))
	buf[12] = 0x01
	return buf
}
