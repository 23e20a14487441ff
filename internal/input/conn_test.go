package input

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/groovymister/gomister/internal/protocol"
)

func TestOpen_rejectsHostname(t *testing.T) {
	if _, err := Open("mister.local", 0); err == nil {
		t.Fatal("Open() with a hostname, want error")
	}
}

func TestOpen_sendsHello(t *testing.T) {
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer pc.Close()
	addr := pc.LocalAddr().(*net.UDPAddr)

	c, err := Open(addr.IP.String(), addr.Port)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	buf := make([]byte, 8)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if n != 1 || buf[0] != 0x00 {
		t.Errorf("hello datagram = %v, want [0x00]", buf[:n])
	}
}

func joyDigitalPacket(frame uint32, order uint8, joy1, joy2 uint16) []byte {
	buf := make([]byte, protocol.LenJoyDigital)
	binary.LittleEndian.PutUint32(buf[0:4], frame)
	buf[4] = order
	binary.LittleEndian.PutUint16(buf[5:7], joy1)
	binary.LittleEndian.PutUint16(buf[7:9], joy2)
	return buf
}

func TestDispatch_routesByLength(t *testing.T) {
	c := &Conn{recvBuf: make([]byte, 128)}

	if !c.dispatch(joyDigitalPacket(1, 0, 0x03, 0x00)) {
		t.Fatal("dispatch(joy digital) = false, want true")
	}
	j, ok := c.Joystick()
	if !ok || j.Joy1 != 0x03 {
		t.Errorf("Joystick() = %+v, %v, want Joy1=0x03", j, ok)
	}

	ps2 := make([]byte, protocol.LenPs2Keyboard)
	binary.LittleEndian.PutUint32(ps2[0:4], 1)
	ps2[4] = 0
	ps2[5] = 0x80 // bit 7 of byte 0 (scancode 7)
	if !c.dispatch(ps2) {
		t.Fatal("dispatch(ps2 keyboard) = false, want true")
	}
	p, ok := c.Ps2()
	if !ok || !p.KeyDown(7) {
		t.Errorf("Ps2() = %+v, %v, want KeyDown(7)", p, ok)
	}
}

func TestDispatch_unknownLengthIgnored(t *testing.T) {
	c := &Conn{recvBuf: make([]byte, 128)}
	if c.dispatch(make([]byte, 5)) {
		t.Error("dispatch(5 bytes) = true, want false (no matching parser)")
	}
}

func TestAcceptJoy_dedupByFrameThenOrder(t *testing.T) {
	c := &Conn{}

	if !c.acceptJoy(protocol.JoystickState{Frame: 5, Order: 0}) {
		t.Fatal("first packet rejected")
	}
	if c.acceptJoy(protocol.JoystickState{Frame: 5, Order: 0}) {
		t.Error("identical (frame, order) accepted, want rejected")
	}
	if c.acceptJoy(protocol.JoystickState{Frame: 4, Order: 9}) {
		t.Error("older frame accepted, want rejected")
	}
	if !c.acceptJoy(protocol.JoystickState{Frame: 5, Order: 1}) {
		t.Error("same frame, higher order rejected, want accepted")
	}
	if !c.acceptJoy(protocol.JoystickState{Frame: 6, Order: 0}) {
		t.Error("newer frame, lower order rejected, want accepted")
	}
}

func TestAcceptPs2_independentFromJoyDedup(t *testing.T) {
	c := &Conn{}
	c.acceptJoy(protocol.JoystickState{Frame: 100, Order: 9})
	if !c.acceptPs2(protocol.Ps2State{Frame: 1, Order: 0}) {
		t.Error("PS/2 dedup incorrectly coupled to joystick dedup state")
	}
}

func TestPoll_drainsAndDedupsAcrossDatagrams(t *testing.T) {
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer pc.Close()
	fpgaAddr := pc.LocalAddr().(*net.UDPAddr)

	c, err := Open(fpgaAddr.IP.String(), fpgaAddr.Port)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	// Consume the hello so it doesn't confuse the test's own reads.
	hello := make([]byte, 4)
	pc.ReadFrom(hello)

	clientAddr := c.udp.LocalAddr().(*net.UDPAddr)
	pc.WriteTo(joyDigitalPacket(1, 0, 0x01, 0), clientAddr)
	pc.WriteTo(joyDigitalPacket(1, 2, 0x02, 0), clientAddr) // supersedes: same frame, higher order
	pc.WriteTo(joyDigitalPacket(0, 9, 0xFF, 0), clientAddr) // stale: lower frame, ignored

	var updated int
	for i := 0; i < 1000 && updated == 0; i++ {
		updated = c.Poll()
	}
	if updated != 2 {
		t.Fatalf("Poll() accepted %d datagrams, want 2", updated)
	}
	j, _ := c.Joystick()
	if j.Joy1 != 0x02 {
		t.Errorf("Joystick().Joy1 = %#x, want 0x02 (latest accepted)", j.Joy1)
	}
}
