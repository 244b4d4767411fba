package mapping

import (
	"math"

	"github.com/digitaltrails/opentrack-opal/internal/protocol"
	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

// ControlUpdate is one (control, value) pair produced by mapping a
// conditioned sample. Type distinguishes absolute-axis updates from
// button transitions.
type ControlUpdate struct {
	Type  uint16
	Code  uint16
	Value int32
}

// Mapper applies the resolved binding table to conditioned samples.
// Pair and hat bindings carry a direction latch so that values hovering
// past a dead-zone edge cannot spam transitions.
type Mapper struct {
	set   *Set
	latch [protocol.NumAxes]int8
}

// NewMapper builds a mapper over a resolved set.
func NewMapper(set *Set) *Mapper {
	return &Mapper{set: set}
}

// Map produces the control updates for one tick. Axis bindings update
// every tick (the emitter suppresses unchanged values); pair and hat
// bindings produce updates only on dead-zone crossings.
func (m *Mapper) Map(s protocol.Sample) []ControlUpdate {
	var out []ControlUpdate
	for slot := range m.set.Slots {
		b := &m.set.Slots[slot]
		v := s.Value(b.Source)
		switch b.Kind {
		case KindAxis:
			out = append(out, ControlUpdate{
				Type: uinput.EvAbs, Code: b.AbsCode, Value: scaleToDevice(v, b),
			})
		case KindButtonPair:
			out = m.cross(out, slot, b, v, func(dir int8) []ControlUpdate {
				return pairTransition(m.latch[slot], dir, b)
			})
		case KindHat:
			out = m.cross(out, slot, b, v, func(dir int8) []ControlUpdate {
				return []ControlUpdate{{Type: uinput.EvAbs, Code: b.AbsCode, Value: int32(dir)}}
			})
		}
	}
	return out
}

// cross runs the shared three-state dead-zone machine and invokes emit
// on a latch change.
func (m *Mapper) cross(out []ControlUpdate, slot int, b *Binding, v float64, emit func(dir int8) []ControlUpdate) []ControlUpdate {
	var dir int8
	switch {
	case v >= b.DeadZone:
		dir = 1
	case v <= -b.DeadZone:
		dir = -1
	default:
		return out // inside the dead zone: hold the latch
	}
	if dir == m.latch[slot] {
		return out // re-crossing in the latched direction is a no-op
	}
	out = append(out, emit(dir)...)
	m.latch[slot] = dir
	return out
}

func pairTransition(prev, next int8, b *Binding) []ControlUpdate {
	var out []ControlUpdate
	if prev == 1 {
		out = append(out, ControlUpdate{Type: uinput.EvKey, Code: b.Pos, Value: 0})
	} else if prev == -1 {
		out = append(out, ControlUpdate{Type: uinput.EvKey, Code: b.Neg, Value: 0})
	}
	if next == 1 {
		out = append(out, ControlUpdate{Type: uinput.EvKey, Code: b.Pos, Value: 1})
	} else {
		out = append(out, ControlUpdate{Type: uinput.EvKey, Code: b.Neg, Value: 1})
	}
	return out
}

// SnapCenter returns the press and release batches for the dwell-driven
// slot, or nil when no snap action is configured. The detector only
// fires when the monitored axes sit in the center zone, so the action
// cannot coincide with large head motion.
func (m *Mapper) SnapCenter() (press, release []ControlUpdate) {
	b := m.set.Snap
	if b == nil {
		return nil, nil
	}
	if b.Kind == KindHat {
		press = []ControlUpdate{{Type: uinput.EvAbs, Code: b.AbsCode, Value: 1}}
		release = []ControlUpdate{{Type: uinput.EvAbs, Code: b.AbsCode, Value: 0}}
		return press, release
	}
	press = []ControlUpdate{{Type: uinput.EvKey, Code: b.Pos, Value: 1}}
	release = []ControlUpdate{{Type: uinput.EvKey, Code: b.Pos, Value: 0}}
	return press, release
}

// scaleToDevice maps a tracking-space value through the user scale
// factor onto the device's declared range, clamping at the ends.
func scaleToDevice(v float64, b *Binding) int32 {
	trackMin, trackMax := b.Source.Range()
	scaled := v * b.Scale
	norm := (scaled - trackMin) / (trackMax - trackMin)
	dev := float64(b.Min) + norm*float64(b.Max-b.Min)
	out := int32(math.Round(dev))
	if out < b.Min {
		return b.Min
	}
	if out > b.Max {
		return b.Max
	}
	return out
}
