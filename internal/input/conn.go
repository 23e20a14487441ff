// Package input implements the Input Connection (component G): the
// non-blocking UDP socket on the FPGA's input channel, its length-dispatched
// packet parser, and frame+order deduplication for joystick and PS/2 state.
package input

import (
	"fmt"
	"net"
	"syscall"

	"github.com/groovymister/gomister/internal/protocol"
)

// DefaultPort is the well-known remote UDP port the Groovy_MiSTer firmware
// streams joystick and PS/2 state on.
const DefaultPort = 32101

// Conn is the Input Connection. It owns its socket and the latest decoded
// joystick/PS2 snapshots.
type Conn struct {
	udp *net.UDPConn

	recvBuf []byte

	haveJoy bool
	joy     protocol.JoystickState

	havePs2 bool
	ps2     protocol.Ps2State
}

// Open binds a UDP socket to host's input channel and sends the one-byte
// hello that tells the FPGA where to stream state. port of 0 selects
// DefaultPort.
func Open(host string, port int) (*Conn, error) {
	if port == 0 {
		port = DefaultPort
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("input: %q is not an IPv4 literal", host)
	}

	udp, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: ip, Port: port})
	if err != nil {
		return nil, fmt.Errorf("input: dial: %w", err)
	}
	if _, err := udp.Write([]byte{0x00}); err != nil {
		udp.Close()
		return nil, fmt.Errorf("input: hello: %w", err)
	}

	return &Conn{udp: udp, recvBuf: make([]byte, 128)}, nil
}

// Close closes the socket.
func (c *Conn) Close() error { return c.udp.Close() }

// Joystick returns the latest deduplicated joystick snapshot and whether any
// has been received yet.
func (c *Conn) Joystick() (protocol.JoystickState, bool) { return c.joy, c.haveJoy }

// Ps2 returns the latest deduplicated PS/2 snapshot and whether any has been
// received yet.
func (c *Conn) Ps2() (protocol.Ps2State, bool) { return c.ps2, c.havePs2 }

// Poll drains the socket non-blockingly, dispatching each datagram by
// length to the matching parser and applying (frame, order) dedup
// independently for joystick and PS/2 state. It returns the number of
// datagrams that updated state.
func (c *Conn) Poll() int {
	rc, err := c.udp.SyscallConn()
	if err != nil {
		return 0
	}
	updated := 0
	for {
		var n int
		var rerr error
		err := rc.Read(func(fd uintptr) bool {
			n, rerr = syscall.Read(int(fd), c.recvBuf)
			return true // never wait for readiness
		})
		if err != nil || rerr != nil {
			return updated
		}
		if c.dispatch(c.recvBuf[:n]) {
			updated++
		}
	}
}

func (c *Conn) dispatch(buf []byte) bool {
	switch len(buf) {
	case protocol.LenJoyDigital:
		j, ok := protocol.ParseJoyDigital(buf)
		return ok && c.acceptJoy(j)
	case protocol.LenJoyAnalog:
		j, ok := protocol.ParseJoyAnalog(buf)
		return ok && c.acceptJoy(j)
	case protocol.LenPs2Keyboard:
		p, ok := protocol.ParsePs2Keyboard(buf)
		return ok && c.acceptPs2(p)
	case protocol.LenPs2Mouse:
		p, ok := protocol.ParsePs2Mouse(buf)
		return ok && c.acceptPs2(p)
	default:
		return false
	}
}

func (c *Conn) acceptJoy(j protocol.JoystickState) bool {
	if c.haveJoy && !newer(j.Frame, j.Order, c.joy.Frame, c.joy.Order) {
		return false
	}
	c.joy = j
	c.haveJoy = true
	return true
}

func (c *Conn) acceptPs2(p protocol.Ps2State) bool {
	if c.havePs2 && !newer(p.Frame, p.Order, c.ps2.Frame, c.ps2.Order) {
		return false
	}
	c.ps2 = p
	c.havePs2 = true
	return true
}

// newer reports whether (frame, order) strictly postdates (stored, storedOrder).
func newer(frame uint32, order uint8, stored uint32, storedOrder uint8) bool {
	if frame != stored {
		return frame > stored
	}
	return order > storedOrder
}
