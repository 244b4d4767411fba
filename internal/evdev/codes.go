package evdev

import (
	"fmt"

	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

var typeNames = map[uint16]string{
	uinput.EvSyn: "SYN",
	uinput.EvKey: "KEY",
	uinput.EvRel: "REL",
	uinput.EvAbs: "ABS",
	0x04:         "MSC",
	0x11:         "LED",
	0x15:         "FF",
}

var keyNames = map[uint16]string{
	uinput.BtnLeft:    "BTN_LEFT",
	uinput.BtnRight:   "BTN_RIGHT",
	uinput.BtnMiddle:  "BTN_MIDDLE",
	uinput.BtnTrigger: "BTN_TRIGGER",
	uinput.BtnA:       "BTN_A",
	uinput.BtnB:       "BTN_B",
	uinput.BtnX:       "BTN_X",
	uinput.BtnY:       "BTN_Y",
	uinput.BtnTL:      "BTN_TL",
	uinput.BtnTR:      "BTN_TR",
	uinput.BtnSelect:  "BTN_SELECT",
	uinput.BtnStart:   "BTN_START",
	uinput.BtnMode:    "BTN_MODE",
	uinput.BtnThumbL:  "BTN_THUMBL",
	uinput.BtnThumbR:  "BTN_THUMBR",
}

var relNames = map[uint16]string{
	uinput.RelX:     "REL_X",
	uinput.RelY:     "REL_Y",
	uinput.RelWheel: "REL_WHEEL",
}

var absNames = map[uint16]string{
	uinput.AbsX:     "ABS_X",
	uinput.AbsY:     "ABS_Y",
	uinput.AbsZ:     "ABS_Z",
	uinput.AbsRX:    "ABS_RX",
	uinput.AbsRY:    "ABS_RY",
	uinput.AbsRZ:    "ABS_RZ",
	uinput.AbsHat0X: "ABS_HAT0X",
	uinput.AbsHat0Y: "ABS_HAT0Y",
}

// TypeName renders an event type for display.
func TypeName(t uint16) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EV_0x%02x", t)
}

// CodeName renders an event code for display, given its type.
func CodeName(t, code uint16) string {
	var name string
	var ok bool
	switch t {
	case uinput.EvKey:
		name, ok = keyNames[code]
	case uinput.EvRel:
		name, ok = relNames[code]
	case uinput.EvAbs:
		name, ok = absNames[code]
	case uinput.EvSyn:
		if code == uinput.SynReport {
			return "SYN_REPORT"
		}
	}
	if ok {
		return name
	}
	return fmt.Sprintf("0x%03x", code)
}
