package protocol

import "encoding/binary"

// Input packet lengths, used to dispatch an incoming datagram to a parser.
const (
	LenJoyDigital  = 9
	LenJoyAnalog   = 17
	LenPs2Keyboard = 37
	LenPs2Mouse    = 41
)

// JoystickState is the latest decoded joystick snapshot for one of the two
// digital/analog pads the firmware reports.
type JoystickState struct {
	Frame uint32
	Order uint8
	Joy1  uint16
	Joy2  uint16
	Axes  [8]int8
}

// Ps2State is the latest decoded PS/2 keyboard (and, when present, mouse)
// snapshot. Keys is a 256-bit scancode bitfield: bit n lives at byte n/8,
// bit n%8.
type Ps2State struct {
	Frame     uint32
	Order     uint8
	Keys      [32]byte
	MouseBtns byte
	MouseX    int8
	MouseY    int8
	MouseZ    int8
}

// KeyDown reports whether scancode is currently held per Keys.
func (p Ps2State) KeyDown(scancode int) bool {
	if scancode < 0 || scancode >= 256 {
		return false
	}
	return p.Keys[scancode/8]&(1<<uint(scancode%8)) != 0
}

// ParseJoyDigital decodes a 9-byte digital joystick packet. Axes are left zeroed.
func ParseJoyDigital(buf []byte) (JoystickState, bool) {
	if len(buf) < LenJoyDigital {
		return JoystickState{}, false
	}
	return JoystickState{
		Frame: binary.LittleEndian.Uint32(buf[0:4]),
		Order: buf[4],
		Joy1:  binary.LittleEndian.Uint16(buf[5:7]),
		Joy2:  binary.LittleEndian.Uint16(buf[7:9]),
	}, true
}

// ParseJoyAnalog decodes a 17-byte analog joystick packet: the digital
// fields plus 8 signed axes.
func ParseJoyAnalog(buf []byte) (JoystickState, bool) {
	if len(buf) < LenJoyAnalog {
		return JoystickState{}, false
	}
	j, _ := ParseJoyDigital(buf)
	for i := 0; i < 8; i++ {
		j.Axes[i] = int8(buf[9+i])
	}
	return j, true
}

// ParsePs2Keyboard decodes a 37-byte keyboard-only packet. Mouse fields are
// left zeroed.
func ParsePs2Keyboard(buf []byte) (Ps2State, bool) {
	if len(buf) < LenPs2Keyboard {
		return Ps2State{}, false
	}
	var p Ps2State
	p.Frame = binary.LittleEndian.Uint32(buf[0:4])
	p.Order = buf[4]
	copy(p.Keys[:], buf[5:37])
	return p, true
}

// ParsePs2Mouse decodes a 41-byte keyboard+mouse packet: the keyboard
// fields plus a mouse button/status byte and three signed deltas.
func ParsePs2Mouse(buf []byte) (Ps2State, bool) {
	if len(buf) < LenPs2Mouse {
		return Ps2State{}, false
	}
	p, _ := ParsePs2Keyboard(buf)
	p.MouseBtns = buf[37]
	p.MouseX = int8(buf[38])
	p.MouseY = int8(buf[39])
	p.MouseZ = int8(buf[40])
	return p, true
}
