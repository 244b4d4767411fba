package uinput

// Stick axis ranges match a real X-Box 360 pad: full-range sticks
// with a small flat zone, byte-range triggers, tri-state hats.
const (
	StickAxisMin = -32767
	StickAxisMax = 32767

	TriggerMin = 0
	TriggerMax = 255
)

// NewMouse registers a virtual relative-pointing device. The buttons
// have to be declared even though motion is the main output; without
// them the kernel does not treat the node as a pointer.
func NewMouse(path, name string) (*Device, error) {
	return Create(path, name, Caps{
		Rels: []uint16{RelX, RelY, RelWheel},
		Keys: []uint16{BtnLeft, BtnRight, BtnMiddle},
	})
}

// StickAbsAxes declares the gamepad's absolute axes.
func StickAbsAxes() []AbsAxis {
	stick := func(code uint16) AbsAxis {
		return AbsAxis{Code: code, Min: StickAxisMin, Max: StickAxisMax, Fuzz: 16, Flat: 128}
	}
	trigger := func(code uint16) AbsAxis {
		return AbsAxis{Code: code, Min: TriggerMin, Max: TriggerMax}
	}
	hat := func(code uint16) AbsAxis {
		return AbsAxis{Code: code, Min: -1, Max: 1}
	}
	return []AbsAxis{
		stick(AbsRX), stick(AbsRY), trigger(AbsRZ),
		stick(AbsX), stick(AbsY), trigger(AbsZ),
		hat(AbsHat0X), hat(AbsHat0Y),
	}
}

// StickAbsInfo returns the declared range for an abs axis code.
func StickAbsInfo(code uint16) (AbsAxis, bool) {
	for _, a := range StickAbsAxes() {
		if a.Code == code {
			return a, true
		}
	}
	return AbsAxis{}, false
}

// NewStick registers a virtual gamepad-class device. The full button
// set is declared so games identify the device as a controller, even
// when only a few buttons are bound.
func NewStick(path, name string) (*Device, error) {
	return Create(path, name, Caps{
		Abs: StickAbsAxes(),
		Keys: []uint16{
			BtnA, BtnB, BtnX, BtnY,
			BtnTL, BtnTR,
			BtnSelect, BtnStart, BtnMode,
			BtnThumbL, BtnThumbR,
			BtnTrigger,
		},
	})
}
