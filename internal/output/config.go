package output

import "github.com/groovymister/gomister/internal/protocol"

// DefaultPort is the well-known remote UDP port the Groovy_MiSTer firmware
// listens for output-channel commands on.
const DefaultPort = 32100

// DefaultSendBufBytes is the best-effort SO_SNDBUF size requested at open.
const DefaultSendBufBytes = 2 * 1024 * 1024

// DefaultMTU is the configured MTU before the UDP+IPv4 header allowance is
// subtracted (see MTUEffective).
const DefaultMTU = 1500

// Config configures an Output Connection.
type Config struct {
	Host string // IPv4 literal; DNS names are rejected (resolve_failed)
	Port int     // 0 = DefaultPort

	MTU int // 0 = DefaultMTU; effective payload size is MTU-28
	SendBufBytes int // 0 = DefaultSendBufBytes

	RGBMode       protocol.RGBMode
	SoundRate     protocol.SoundRate
	SoundChannels protocol.SoundChannels
	LZ4Mode       protocol.LZ4Mode

	// MaxFrameSize bounds the owned compression/delta buffers. Required
	// when LZ4Mode != LZ4ModeOff.
	MaxFrameSize int
	// KeyframeInterval is forwarded to the delta encoder when LZ4Mode
	// selects a delta variant. 0 disables periodic keyframes.
	KeyframeInterval int

	// TOS, when nonzero, is applied to the outbound socket via
	// golang.org/x/net/ipv4 for LAN QoS prioritization of the real-time
	// stream. A failure to apply it is logged, not fatal.
	TOS byte
}

func (c Config) portOrDefault() int {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}

func (c Config) mtuOrDefault() int {
	if c.MTU == 0 {
		return DefaultMTU
	}
	return c.MTU
}

func (c Config) sendBufOrDefault() int {
	if c.SendBufBytes == 0 {
		return DefaultSendBufBytes
	}
	return c.SendBufBytes
}

// MTUEffective is the maximum UDP payload size that fits within the
// configured MTU once the typical IPv4+UDP header allowance (28 bytes) is
// subtracted.
func (c Config) MTUEffective() int {
	return c.mtuOrDefault() - 28
}
