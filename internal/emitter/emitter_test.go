package emitter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitaltrails/opentrack-opal/internal/mapping"
	"github.com/digitaltrails/opentrack-opal/internal/protocol"
	"github.com/digitaltrails/opentrack-opal/internal/uinput"
)

// fakeDevice records written batches in order.
type fakeDevice struct {
	batches [][]uinput.Event
	fail    error
}

func (f *fakeDevice) WriteEvents(events []uinput.Event) error {
	if f.fail != nil {
		return f.fail
	}
	batch := make([]uinput.Event, len(events))
	copy(batch, events)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeDevice) Close() error { return nil }

func (f *fakeDevice) flat() []uinput.Event {
	var out []uinput.Event
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

func TestMouseEmitsDeltas(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMouse(dev, 10.0, false, nil)
	m.hold = 0

	require.NoError(t, m.Emit(protocol.Sample{Yaw: 2, Pitch: 1}))
	require.Len(t, dev.batches, 1)
	batch := dev.batches[0]
	require.Len(t, batch, 3) // x, y, syn
	assert.Equal(t, uinput.RelEvent(uinput.RelX, 20), batch[0])
	// Pitch is inverted: positive pitch moves the pointer up.
	assert.Equal(t, uinput.RelEvent(uinput.RelY, -10), batch[1])
	assert.Equal(t, uinput.SynEvent(), batch[2])

	// Same sample again: zero delta, nothing written.
	require.NoError(t, m.Emit(protocol.Sample{Yaw: 2, Pitch: 1}))
	assert.Len(t, dev.batches, 1)
}

func TestMouseWheelToggle(t *testing.T) {
	off := NewMouse(&fakeDevice{}, 30.0, false, nil)
	offDev := off.dev.(*fakeDevice)
	require.NoError(t, off.Emit(protocol.Sample{Z: -5}))
	assert.Empty(t, offDev.batches, "wheel disabled: z must not emit")

	dev := &fakeDevice{}
	on := NewMouse(dev, 30.0, true, nil)
	require.NoError(t, on.Emit(protocol.Sample{Z: -5}))
	require.Len(t, dev.batches, 1)
	// Wheel clicks carry direction only, not magnitude.
	assert.Equal(t, uinput.RelEvent(uinput.RelWheel, 1), dev.batches[0][0])

	require.NoError(t, on.Emit(protocol.Sample{Z: 5}))
	assert.Equal(t, uinput.RelEvent(uinput.RelWheel, -1), dev.batches[1][0])
}

func TestMouseWrapGuard(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMouse(dev, 10.0, false, nil)
	// A jump of more than 180 degrees is tracker wrap-around, not
	// motion; it must be swallowed.
	require.NoError(t, m.Emit(protocol.Sample{Yaw: 200}))
	assert.Empty(t, dev.batches)

	// Subsequent small moves resume from the new position.
	require.NoError(t, m.Emit(protocol.Sample{Yaw: 201}))
	require.Len(t, dev.batches, 1)
	assert.Equal(t, uinput.RelEvent(uinput.RelX, 10), dev.batches[0][0])
}

func TestMouseClickPressReleases(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMouse(dev, 10.0, false, nil)
	m.hold = 0
	require.NoError(t, m.Click())
	require.Len(t, dev.batches, 2)
	assert.Equal(t, uinput.KeyEvent(uinput.BtnMiddle, 1), dev.batches[0][0])
	assert.Equal(t, uinput.KeyEvent(uinput.BtnMiddle, 0), dev.batches[1][0])
}

func TestMousePropagatesWriteFailure(t *testing.T) {
	dev := &fakeDevice{fail: errors.New("device removed")}
	m := NewMouse(dev, 10.0, false, nil)
	assert.Error(t, m.Emit(protocol.Sample{Yaw: 5}))
}

func TestStickGatesUnchangedAbsValues(t *testing.T) {
	dev := &fakeDevice{}
	s := NewStick(dev, nil)
	s.hold = 0

	up := []mapping.ControlUpdate{{Type: uinput.EvAbs, Code: uinput.AbsX, Value: 1000}}
	require.NoError(t, s.Emit(up))
	require.NoError(t, s.Emit(up)) // unchanged: suppressed
	assert.Len(t, dev.batches, 1)

	up[0].Value = 1001
	require.NoError(t, s.Emit(up))
	assert.Len(t, dev.batches, 2)
}

func TestStickPassesButtonsThrough(t *testing.T) {
	dev := &fakeDevice{}
	s := NewStick(dev, nil)
	s.hold = 0

	require.NoError(t, s.Emit([]mapping.ControlUpdate{
		{Type: uinput.EvAbs, Code: uinput.AbsY, Value: 0},
		{Type: uinput.EvKey, Code: uinput.BtnA, Value: 1},
	}))
	flat := dev.flat()
	require.Len(t, flat, 3)
	assert.Equal(t, uinput.KeyEvent(uinput.BtnA, 1), flat[1])
}

func TestStickPulse(t *testing.T) {
	dev := &fakeDevice{}
	s := NewStick(dev, nil)
	s.hold = 0

	press := []mapping.ControlUpdate{{Type: uinput.EvKey, Code: uinput.BtnTrigger, Value: 1}}
	release := []mapping.ControlUpdate{{Type: uinput.EvKey, Code: uinput.BtnTrigger, Value: 0}}
	require.NoError(t, s.Pulse(press, release))
	require.Len(t, dev.batches, 2)
	assert.Equal(t, uinput.KeyEvent(uinput.BtnTrigger, 1), dev.batches[0][0])
	assert.Equal(t, uinput.KeyEvent(uinput.BtnTrigger, 0), dev.batches[1][0])

	require.NoError(t, s.Pulse(nil, nil))
	assert.Len(t, dev.batches, 2)
}
