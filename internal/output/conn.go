package output

import (
	"fmt"
	"log"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/groovymister/gomister/internal/protocol"
)

// Conn is the Output Connection (component E): the non-blocking UDP socket
// to the FPGA's output channel, plus the buffers and state it exclusively
// owns (status snapshot, compressor, delta references).
type Conn struct {
	udp  *net.UDPConn
	cfg  Config
	comp *compressor

	frameTimeNs int64 // shared with comp's adaptive variant via pointer

	status   protocol.FpgaStatus
	recvBuf  []byte
	sendBuf  []byte // scratch for compressed/delta payload
	errLimit rate.Sometimes
}

// Open resolves cfg.Host as an IPv4 literal, dials a UDP socket to it, and
// sizes its send buffer. Per §4.E, a host that the caller would rely on DNS
// to resolve is rejected outright: the output channel runs on a LAN with a
// known FPGA address, and this library does not retry name resolution on
// every open.
func Open(cfg Config) (*Conn, error) {
	ip := net.ParseIP(cfg.Host)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("%w: %q is not an IPv4 literal", ErrResolveFailed, cfg.Host)
	}

	addr := &net.UDPAddr{IP: ip, Port: cfg.portOrDefault()}
	udp, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocketCreateFailed, err)
	}

	if err := udp.SetWriteBuffer(cfg.sendBufOrDefault()); err != nil {
		udp.Close()
		return nil, fmt.Errorf("%w: %v", ErrSetSendBufFailed, err)
	}

	c := &Conn{
		udp:     udp,
		cfg:     cfg,
		recvBuf: make([]byte, 2048),
	}

	if cfg.TOS != 0 {
		if err := ipv4.NewConn(udp).SetTOS(int(cfg.TOS)); err != nil {
			log.Printf("gmz: set tos %d failed (non-fatal): %v", cfg.TOS, err)
		}
	}

	if cfg.LZ4Mode != protocol.LZ4ModeOff {
		bound := cfg.MaxFrameSize + cfg.MaxFrameSize/255 + 16 // lz4 worst case (lz4codec.CompressBound)
		c.sendBuf = make([]byte, bound)
	}
	c.comp = newCompressor(cfg.LZ4Mode, cfg.MaxFrameSize, cfg.KeyframeInterval, &c.frameTimeNs)

	return c, nil
}

// Close best-effort emits a close command then closes the socket.
func (c *Conn) Close() error {
	c.udp.Write(protocol.EncodeClose())
	return c.udp.Close()
}

// Status returns the most recently drained FPGA status snapshot.
func (c *Conn) Status() protocol.FpgaStatus { return c.status }

// SendInit emits the init command for the connection's configured modes.
func (c *Conn) SendInit() error {
	buf, err := protocol.EncodeInit(c.cfg.LZ4Mode, c.cfg.SoundRate, c.cfg.SoundChannels, c.cfg.RGBMode)
	if err != nil {
		return err
	}
	return c.send(buf)
}

// SwitchRes emits switch_res and refreshes the frame period the adaptive
// compressor (if any) budgets against.
func (c *Conn) SwitchRes(m protocol.Modeline) (protocol.FrameTiming, error) {
	buf, err := protocol.EncodeSwitchRes(m)
	if err != nil {
		return protocol.FrameTiming{}, err
	}
	if err := c.send(buf); err != nil {
		return protocol.FrameTiming{}, err
	}
	timing := protocol.FrameTimingFor(m)
	c.frameTimeNs = timing.FrameTimeNs
	return timing, nil
}

// SendFrame compresses bytes (if configured) and emits the header + chunked
// payload. field selects the delta reference (0 or 1) for interlaced
// streams; it is ignored when no delta variant is configured.
func (c *Conn) SendFrame(bytes []byte, frameNum uint32, field byte, vsyncLine uint16) error {
	var payload []byte
	var isDelta bool

	if c.comp.mode == protocol.LZ4ModeOff {
		payload = bytes
	} else {
		n, delta, err := c.comp.encode(bytes, field, c.sendBuf)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCompressFailed, err)
		}
		payload = c.sendBuf[:n]
		isDelta = delta
	}

	var header []byte
	switch {
	case c.comp.mode == protocol.LZ4ModeOff:
		header = protocol.BlitHeaderRaw(frameNum, field, vsyncLine)
	case isDelta:
		header = protocol.BlitHeaderLZ4Delta(frameNum, field, vsyncLine, uint32(len(payload)))
	default:
		header = protocol.BlitHeaderLZ4(frameNum, field, vsyncLine, uint32(len(payload)))
	}

	if err := c.send(header); err != nil {
		return err
	}
	return c.sendChunked(payload)
}

// SendAudio emits the 3-byte audio header followed by pcm fragmented into
// MTU-sized chunks. Empty input is silently dropped.
func (c *Conn) SendAudio(pcm []byte) error {
	if len(pcm) > MaxAudioBytes {
		return ErrAudioTooLarge
	}
	if len(pcm) == 0 {
		return nil
	}
	if err := c.send(protocol.EncodeAudioHeader(uint16(len(pcm)))); err != nil {
		return err
	}
	return c.sendChunked(pcm)
}

// sendChunked fragments payload into MTUEffective()-sized datagrams,
// issuing them in order on the single non-blocking socket.
func (c *Conn) sendChunked(payload []byte) error {
	mtu := c.cfg.MTUEffective()
	for off := 0; off < len(payload); off += mtu {
		end := off + mtu
		if end > len(payload) {
			end = len(payload)
		}
		if err := c.send(payload[off:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Conn) send(buf []byte) error {
	if _, err := c.udp.Write(buf); err != nil {
		c.errLimit.Do(func() { log.Printf("gmz: send failed: %v", err) })
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// Poll drains the socket non-blockingly, overwriting the status snapshot
// with the latest ACK seen. It returns true iff at least one ACK was
// accepted.
func (c *Conn) Poll() bool {
	rc, err := c.udp.SyscallConn()
	if err != nil {
		return false
	}
	accepted := false
	for {
		var n int
		var rerr error
		err := rc.Read(func(fd uintptr) bool {
			n, rerr = unix.Read(int(fd), c.recvBuf)
			return true // never wait for readiness
		})
		if err != nil || rerr != nil {
			return accepted
		}
		if status, ok := protocol.ParseACK(c.recvBuf[:n]); ok {
			c.status = status
			accepted = true
		}
	}
}

// WaitSync requests a status update and blocks up to timeoutMs for the
// socket to become readable, then drains it. It is the only call that
// unblocks the FPGA's ACK-on-request bootstrap and recovers from stalls.
func (c *Conn) WaitSync(timeoutMs int) bool {
	if err := c.send(protocol.EncodeGetStatus()); err != nil {
		return false
	}

	ready := false
	rc, err := c.udp.SyscallConn()
	if err != nil {
		return c.Poll()
	}
	ctrlErr := rc.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, _ := unix.Poll(fds, timeoutMs)
		ready = n > 0
	})
	if ctrlErr != nil {
		return c.Poll()
	}
	if !ready {
		return false
	}
	return c.Poll()
}
