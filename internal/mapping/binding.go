// Package mapping translates conditioned tracking axes into virtual
// gamepad control updates through a fixed binding table. The table is
// configured as a flat list of small integers (one per tracking axis,
// plus an optional snap-center slot) and resolved once at startup into
// typed bindings, so the per-tick path is a plain dispatch.
package mapping

import (
	"fmt"

	"github.com/digitaltrails/opentrack-opal/internal/protocol"
	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

// Binding codes accepted in configuration.
const (
	CodeNone = iota
	CodeAbsRX
	CodeAbsRY
	CodeAbsRZ
	CodeAbsX
	CodeAbsY
	CodeAbsZ
	CodeHat0X
	CodeHat0Y
	CodePairAB
	CodePairXY
	CodePairShoulder
	CodePairThumb
	CodeSnapCenter

	maxCode = CodeSnapCenter
)

// DefaultStickCodes is the stock wiring:
// x→RX, y→RY, z→RZ, yaw→X, pitch→Y, roll→Z.
var DefaultStickCodes = []int{CodeAbsRX, CodeAbsRY, CodeAbsRZ, CodeAbsX, CodeAbsY, CodeAbsZ}

// Kind tags a resolved binding variant.
type Kind int

const (
	KindNone Kind = iota
	KindAxis
	KindButtonPair
	KindHat
	KindSnapCenter
)

// Binding is one resolved slot of the table. Immutable after Resolve.
type Binding struct {
	Kind   Kind
	Source protocol.Axis

	// KindAxis and KindHat: target absolute axis and declared range.
	AbsCode uint16
	Min     int32
	Max     int32

	// KindButtonPair and KindSnapCenter: button codes.
	Pos uint16
	Neg uint16

	Scale    float64
	DeadZone float64
}

// Set is the full resolved table: one slot per tracking axis plus an
// optional snap-center action driven by the dwell detector.
type Set struct {
	Slots [protocol.NumAxes]Binding
	Snap  *Binding
}

var pairButtons = map[int][2]uint16{
	CodePairAB:       {uinput.BtnA, uinput.BtnB},
	CodePairXY:       {uinput.BtnX, uinput.BtnY},
	CodePairShoulder: {uinput.BtnTL, uinput.BtnTR},
	CodePairThumb:    {uinput.BtnThumbL, uinput.BtnThumbR},
}

var absCodes = map[int]uint16{
	CodeAbsRX: uinput.AbsRX,
	CodeAbsRY: uinput.AbsRY,
	CodeAbsRZ: uinput.AbsRZ,
	CodeAbsX:  uinput.AbsX,
	CodeAbsY:  uinput.AbsY,
	CodeAbsZ:  uinput.AbsZ,
	CodeHat0X: uinput.AbsHat0X,
	CodeHat0Y: uinput.AbsHat0Y,
}

// Resolve validates the configured code list (6 entries, or 7 with a
// snap-center action) and produces the typed table. Scale applies to
// axis bindings, deadZone (in tracking units) to pairs and hats.
func Resolve(codes []int, scale, deadZone float64) (*Set, error) {
	if len(codes) != protocol.NumAxes && len(codes) != protocol.NumAxes+1 {
		return nil, fmt.Errorf("binding list must have 6 or 7 entries, got %d", len(codes))
	}
	set := &Set{}
	for slot, code := range codes[:protocol.NumAxes] {
		b, err := resolveSlot(protocol.Axis(slot), code, scale, deadZone)
		if err != nil {
			return nil, err
		}
		set.Slots[slot] = b
	}
	if len(codes) == protocol.NumAxes+1 {
		snap, err := resolveSnap(codes[protocol.NumAxes])
		if err != nil {
			return nil, err
		}
		set.Snap = snap
	}
	return set, nil
}

func resolveSlot(src protocol.Axis, code int, scale, deadZone float64) (Binding, error) {
	switch {
	case code == CodeNone:
		return Binding{Kind: KindNone, Source: src}, nil

	case code >= CodeAbsRX && code <= CodeAbsZ:
		abs := absCodes[code]
		info, _ := uinput.StickAbsInfo(abs)
		return Binding{
			Kind: KindAxis, Source: src,
			AbsCode: abs, Min: info.Min, Max: info.Max,
			Scale: scale,
		}, nil

	case code == CodeHat0X || code == CodeHat0Y:
		return Binding{
			Kind: KindHat, Source: src,
			AbsCode: absCodes[code], Min: -1, Max: 1,
			DeadZone: deadZone,
		}, nil

	case code >= CodePairAB && code <= CodePairThumb:
		pair := pairButtons[code]
		return Binding{
			Kind: KindButtonPair, Source: src,
			Pos: pair[0], Neg: pair[1],
			DeadZone: deadZone,
		}, nil

	case code == CodeSnapCenter:
		return Binding{}, fmt.Errorf("binding %d (snap-center) is only valid in slot 7, found on axis %s", code, src)

	default:
		return Binding{}, fmt.Errorf("unknown binding code %d on axis %s", code, src)
	}
}

// resolveSnap accepts the button and hat actions plus the dedicated
// trigger pulse for the 7th slot; an axis makes no sense there since
// the slot is event-driven, not value-driven.
func resolveSnap(code int) (*Binding, error) {
	switch {
	case code == CodeNone:
		return nil, nil
	case code == CodeSnapCenter:
		return &Binding{Kind: KindSnapCenter, Pos: uinput.BtnTrigger}, nil
	case code >= CodePairAB && code <= CodePairThumb:
		pair := pairButtons[code]
		return &Binding{Kind: KindSnapCenter, Pos: pair[0], Neg: pair[1]}, nil
	case code == CodeHat0X || code == CodeHat0Y:
		return &Binding{Kind: KindHat, AbsCode: absCodes[code], Min: -1, Max: 1}, nil
	default:
		return nil, fmt.Errorf("binding code %d cannot be used for the snap-center slot", code)
	}
}
