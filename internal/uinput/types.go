package uinput

import "syscall"

// InputID identifies the virtual device on the input bus.
type InputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// UserDev is the uinput_user_dev setup struct written to /dev/uinput
// before DevCreate.
type UserDev struct {
	Name       [MaxNameSize]byte
	ID         InputID
	EffectsMax uint32
	Absmax     [AbsSize]int32
	Absmin     [AbsSize]int32
	Absfuzz    [AbsSize]int32
	Absflat    [AbsSize]int32
}

// Event is a kernel input_event. The kernel fills the timestamp on
// write, so emitters leave Time zeroed.
type Event struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// SynEvent closes an event batch; the kernel delivers the batch to
// readers only once it sees the report.
func SynEvent() Event {
	return Event{Type: EvSyn, Code: SynReport}
}

// KeyEvent presses (1) or releases (0) a button.
func KeyEvent(code uint16, value int32) Event {
	return Event{Type: EvKey, Code: code, Value: value}
}

// RelEvent moves a relative axis by value.
func RelEvent(code uint16, value int32) Event {
	return Event{Type: EvRel, Code: code, Value: value}
}

// AbsEvent positions an absolute axis at value.
func AbsEvent(code uint16, value int32) Event {
	return Event{Type: EvAbs, Code: code, Value: value}
}
