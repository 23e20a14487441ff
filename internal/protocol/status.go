package protocol

import "encoding/binary"

// AckSize is the exact length of a status ACK datagram.
const AckSize = 13

// Status bit positions within byte 12 of an ACK.
const (
	bitVramReady     = 0
	bitVramEndFrame  = 1
	bitVramSynced    = 2
	bitVgaFrameskip  = 3
	bitVgaVblank     = 4
	bitVgaF1         = 5
	bitAudioActive   = 6
	bitVramQueue     = 7
)

// FpgaStatus is the parsed 13-byte ACK. Callers should treat a value as a
// snapshot; the owning Output Connection overwrites its own copy on every
// ACK drained from the socket.
type FpgaStatus struct {
	FrameEcho  uint32
	VcountEcho uint16
	Frame      uint32
	Vcount     uint16

	VramReady    bool
	VramEndFrame bool
	VramSynced   bool
	VgaFrameskip bool
	VgaVblank    bool
	VgaF1        bool
	AudioActive  bool
	VramQueue    bool
}

// ParseACK consumes exactly AckSize bytes of buf and returns the decoded
// status. Extra bytes beyond AckSize are ignored (ParseACK only ever looks
// at the first AckSize). ok is false if buf is
// shorter than AckSize, in which case the datagram must be discarded
// silently and the previous status left untouched.
func ParseACK(buf []byte) (FpgaStatus, bool) {
	if len(buf) < AckSize {
		return FpgaStatus{}, false
	}
	flags := buf[12]
	return FpgaStatus{
		FrameEcho:    binary.LittleEndian.Uint32(buf[0:4]),
		VcountEcho:   binary.LittleEndian.Uint16(buf[4:6]),
		Frame:        binary.LittleEndian.Uint32(buf[6:10]),
		Vcount:       binary.LittleEndian.Uint16(buf[10:12]),
		VramReady:    flags&(1<<bitVramReady) != 0,
		VramEndFrame: flags&(1<<bitVramEndFrame) != 0,
		VramSynced:   flags&(1<<bitVramSynced) != 0,
		VgaFrameskip: flags&(1<<bitVgaFrameskip) != 0,
		VgaVblank:    flags&(1<<bitVgaVblank) != 0,
		VgaF1:        flags&(1<<bitVgaF1) != 0,
		AudioActive:  flags&(1<<bitAudioActive) != 0,
		VramQueue:    flags&(1<<bitVramQueue) != 0,
	}, true
}
