package emitter

import (
	"log/slog"
	"time"

	"github.com/digitaltrails/opentrack-opal/internal/mapping"
	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

// Stick emits absolute gamepad events. Axis writes are suppressed
// unless the device-unit value actually changed, so a resting head
// does not flood the input subsystem with no-op updates. Button and
// hat updates arrive from the mapper already edge-triggered and pass
// straight through.
type Stick struct {
	dev  uinput.Writer
	last map[uint16]int32
	hold time.Duration
	log  *slog.Logger
}

// NewStick builds a stick emitter over an open device.
func NewStick(dev uinput.Writer, log *slog.Logger) *Stick {
	return &Stick{dev: dev, last: make(map[uint16]int32), hold: clickHold, log: log}
}

// Emit writes one tick's worth of control updates as a single batch.
func (s *Stick) Emit(updates []mapping.ControlUpdate) error {
	var events []uinput.Event
	for _, u := range updates {
		if u.Type == uinput.EvAbs {
			if last, seen := s.last[u.Code]; seen && last == u.Value {
				continue
			}
			s.last[u.Code] = u.Value
		}
		events = append(events, uinput.Event{Type: u.Type, Code: u.Code, Value: u.Value})
	}
	if len(events) == 0 {
		return nil
	}
	if s.log != nil {
		s.log.Debug("stick", "events", len(events))
	}
	events = append(events, uinput.SynEvent())
	return s.dev.WriteEvents(events)
}

// Pulse performs a press-release action, used for the snap-center
// binding. The release batch clears the axis gate so a later identical
// press still goes through.
func (s *Stick) Pulse(press, release []mapping.ControlUpdate) error {
	if len(press) == 0 {
		return nil
	}
	if err := s.writeBatch(press); err != nil {
		return err
	}
	time.Sleep(s.hold)
	return s.writeBatch(release)
}

func (s *Stick) writeBatch(updates []mapping.ControlUpdate) error {
	events := make([]uinput.Event, 0, len(updates)+1)
	for _, u := range updates {
		if u.Type == uinput.EvAbs {
			s.last[u.Code] = u.Value
		}
		events = append(events, uinput.Event{Type: u.Type, Code: u.Code, Value: u.Value})
	}
	events = append(events, uinput.SynEvent())
	return s.dev.WriteEvents(events)
}
