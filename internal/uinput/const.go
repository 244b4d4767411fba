package uinput

// uinput ioctls, from uinput.h.
const (
	MaxNameSize = 80
	AbsSize     = 64

	DevCreate  = 0x5501
	DevDestroy = 0x5502

	SetEvBit  = 0x40045564
	SetKeyBit = 0x40045565
	SetRelBit = 0x40045566
	SetAbsBit = 0x40045567

	BusUsb = 0x03
)

// Event types, from input-event-codes.h.
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvRel uint16 = 0x02
	EvAbs uint16 = 0x03
	EvMax uint16 = 0x1f

	SynReport = 0
)

// Relative axis codes.
const (
	RelX     uint16 = 0x00
	RelY     uint16 = 0x01
	RelWheel uint16 = 0x08
)

// Absolute axis codes.
const (
	AbsX     uint16 = 0x00
	AbsY     uint16 = 0x01
	AbsZ     uint16 = 0x02
	AbsRX    uint16 = 0x03
	AbsRY    uint16 = 0x04
	AbsRZ    uint16 = 0x05
	AbsHat0X uint16 = 0x10
	AbsHat0Y uint16 = 0x11
)

// Button codes.
const (
	BtnLeft   uint16 = 0x110
	BtnRight  uint16 = 0x111
	BtnMiddle uint16 = 0x112

	BtnTrigger uint16 = 0x120

	BtnA      uint16 = 0x130 // BTN_SOUTH
	BtnB      uint16 = 0x131 // BTN_EAST
	BtnX      uint16 = 0x133 // BTN_NORTH
	BtnY      uint16 = 0x134 // BTN_WEST
	BtnTL     uint16 = 0x136
	BtnTR     uint16 = 0x137
	BtnSelect uint16 = 0x13a
	BtnStart  uint16 = 0x13b
	BtnMode   uint16 = 0x13c
	BtnThumbL uint16 = 0x13d
	BtnThumbR uint16 = 0x13e
)
