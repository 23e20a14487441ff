package output

import (
	"net"
	"testing"

	"github.com/groovymister/gomister/internal/protocol"
)

func TestOpen_rejectsHostname(t *testing.T) {
	_, err := Open(Config{Host: "mister.local"})
	if err == nil {
		t.Fatal("Open() with a hostname, want resolve_failed")
	}
}

func TestOpen_acceptsIPv4Literal(t *testing.T) {
	// Dialing UDP never touches the network (no handshake), so this is safe
	// without a real FPGA listening.
	c, err := Open(Config{Host: "127.0.0.1", Port: 32100})
	if err != nil {
		t.Fatalf("Open() = %v, want success", err)
	}
	defer c.Close()
}

func TestConn_sendChunked_splitsOnMTU(t *testing.T) {
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer pc.Close()
	addr := pc.LocalAddr().(*net.UDPAddr)

	c, err := Open(Config{Host: addr.IP.String(), Port: addr.Port, MTU: 28 + 4})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9} // 3 chunks of 4,4,1 at mtu_eff=4
	if err := c.sendChunked(payload); err != nil {
		t.Fatalf("sendChunked: %v", err)
	}

	buf := make([]byte, 64)
	var got []byte
	for i := 0; i < 3; i++ {
		n, _, err := pc.ReadFrom(buf)
		if err != nil {
			t.Fatalf("ReadFrom(%d): %v", i, err)
		}
		got = append(got, buf[:n]...)
	}
	if string(got) != string(payload) {
		t.Errorf("reassembled chunks = %v, want %v", got, payload)
	}
}

func TestConn_sendFrame_zeroLengthIsHeaderOnly(t *testing.T) {
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer pc.Close()
	addr := pc.LocalAddr().(*net.UDPAddr)

	c, err := Open(Config{Host: addr.IP.String(), Port: addr.Port})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if err := c.SendFrame(nil, 1, 0, 100); err != nil {
		t.Fatalf("SendFrame: %v", err)
	}

	buf := make([]byte, 64)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if n != 8 {
		t.Errorf("got %d-byte datagram, want 8-byte raw blit header only", n)
	}
	if buf[0] != protocol.OpBlit {
		t.Errorf("first byte = %d, want OpBlit", buf[0])
	}
}

func TestConn_sendAudio_rejectsOversized(t *testing.T) {
	c, err := Open(Config{Host: "127.0.0.1"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	big := make([]byte, MaxAudioBytes+1)
	if err := c.SendAudio(big); err == nil {
		t.Fatal("SendAudio() with oversized payload, want audio_too_large")
	}
}

func TestConn_sendAudio_dropsEmpty(t *testing.T) {
	c, err := Open(Config{Host: "127.0.0.1"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if err := c.SendAudio(nil); err != nil {
		t.Errorf("SendAudio(nil) = %v, want nil (silently dropped)", err)
	}
}

func TestConn_poll_parsesValidAckAndIgnoresShortDatagrams(t *testing.T) {
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer pc.Close()
	fpgaAddr := pc.LocalAddr().(*net.UDPAddr)

	c, err := Open(Config{Host: fpgaAddr.IP.String(), Port: fpgaAddr.Port})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	clientAddr := c.udp.LocalAddr().(*net.UDPAddr)

	short := []byte{0x01, 0x02}
	ack := make([]byte, protocol.AckSize)
	ack[0] = 7 // frame_echo low byte

	if _, err := pc.WriteTo(short, clientAddr); err != nil {
		t.Fatalf("WriteTo(short): %v", err)
	}
	if _, err := pc.WriteTo(ack, clientAddr); err != nil {
		t.Fatalf("WriteTo(ack): %v", err)
	}

	// Give both datagrams a moment to land in the client's receive queue.
	for i := 0; i < 1000 && !c.Poll(); i++ {
	}

	if c.Status().FrameEcho != 7 {
		t.Errorf("Status().FrameEcho = %d, want 7", c.Status().FrameEcho)
	}
}

func TestConn_switchRes_refreshesFrameTimeNs(t *testing.T) {
	c, err := Open(Config{Host: "127.0.0.1"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	m := protocol.Modeline{
		PixelClock: 25.2,
		HActive: 640, HBegin: 656, HEnd: 752, HTotal: 800,
		VActive: 480, VBegin: 490, VEnd: 492, VTotal: 525,
	}
	timing, err := c.SwitchRes(m)
	if err != nil {
		t.Fatalf("SwitchRes: %v", err)
	}
	if c.frameTimeNs != timing.FrameTimeNs {
		t.Errorf("frameTimeNs = %d, want %d", c.frameTimeNs, timing.FrameTimeNs)
	}
}
