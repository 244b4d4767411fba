// Package emitter turns mapped control values into concrete event
// writes on a virtual device. It owns the rate/threshold rules: mouse
// output is relative deltas, stick output is change-gated absolute
// positions, and button transitions always go out edge-triggered.
package emitter

import (
	"log/slog"
	"math"
	"time"

	"github.com/digitaltrails/opentrack-opal/internal/protocol"
	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

// clickHold approximates a physical button click interval.
const clickHold = 50 * time.Millisecond

// Mouse emits relative motion from successive conditioned samples:
// yaw drives REL_X, pitch drives REL_Y (inverted), and z optionally
// drives the wheel at a third of the scale.
type Mouse struct {
	dev   uinput.Writer
	scale float64
	wheel bool
	prev  protocol.Sample
	hold  time.Duration
	log   *slog.Logger
}

// NewMouse builds a mouse emitter over an open device.
func NewMouse(dev uinput.Writer, scale float64, wheel bool, log *slog.Logger) *Mouse {
	return &Mouse{dev: dev, scale: scale, wheel: wheel, hold: clickHold, log: log}
}

// Emit writes the delta between this tick's conditioned sample and the
// previous one. Zero deltas produce no events; an all-zero tick writes
// nothing at all.
func (m *Mouse) Emit(cur protocol.Sample) error {
	dx := relDelta(cur.Yaw-m.prev.Yaw, m.scale)
	dy := relDelta(m.prev.Pitch-cur.Pitch, m.scale)
	// The z scale is reduced: forward/back head motion is far smaller
	// than rotation, and full scale makes the wheel hypersensitive.
	dz := relDelta(m.prev.Z-cur.Z, m.scale/3)
	m.prev = cur

	var events []uinput.Event
	if dx != 0 {
		events = append(events, uinput.RelEvent(uinput.RelX, dx))
	}
	if dy != 0 {
		events = append(events, uinput.RelEvent(uinput.RelY, dy))
	}
	if m.wheel && dz != 0 {
		// Wheel events are clicks, not magnitudes: direction only.
		step := int32(1)
		if dz < 0 {
			step = -1
		}
		events = append(events, uinput.RelEvent(uinput.RelWheel, step))
	}
	if len(events) == 0 {
		return nil
	}
	if m.log != nil {
		m.log.Debug("mouse", "dx", dx, "dy", dy, "dz", dz)
	}
	events = append(events, uinput.SynEvent())
	return m.dev.WriteEvents(events)
}

// Click presses and releases the middle button, the conventional
// binding for an application's re-center command.
func (m *Mouse) Click() error {
	if err := m.dev.WriteEvents([]uinput.Event{
		uinput.KeyEvent(uinput.BtnMiddle, 1), uinput.SynEvent(),
	}); err != nil {
		return err
	}
	time.Sleep(m.hold)
	return m.dev.WriteEvents([]uinput.Event{
		uinput.KeyEvent(uinput.BtnMiddle, 0), uinput.SynEvent(),
	})
}

// relDelta scales an axis difference to mouse units. Differences past
// half a revolution are treated as tracker wrap-around and dropped
// rather than emitted as a violent swing.
func relDelta(diff, scale float64) int32 {
	d := scale * diff
	if math.Abs(d) > 180.0*scale {
		return 0
	}
	return int32(math.Round(d))
}
