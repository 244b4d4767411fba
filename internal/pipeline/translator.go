package pipeline

import (
	"github.com/digitaltrails/opentrack-opal/internal/emitter"
	"github.com/digitaltrails/opentrack-opal/internal/mapping"
	"github.com/digitaltrails/opentrack-opal/internal/protocol"
)

// Translator turns a conditioned sample into device events. Center
// fires the auto-center action for the mode.
type Translator interface {
	Translate(cond protocol.Sample) error
	Center() error
}

// MouseTranslator drives the virtual mouse; centering is a middle
// click.
type MouseTranslator struct {
	mouse *emitter.Mouse
}

func NewMouseTranslator(m *emitter.Mouse) *MouseTranslator {
	return &MouseTranslator{mouse: m}
}

func (t *MouseTranslator) Translate(cond protocol.Sample) error {
	return t.mouse.Emit(cond)
}

func (t *MouseTranslator) Center() error {
	return t.mouse.Click()
}

// StickTranslator drives the virtual gamepad through the binding
// mapper; centering pulses the snap-center control, if bound.
type StickTranslator struct {
	mapper *mapping.Mapper
	stick  *emitter.Stick
}

func NewStickTranslator(m *mapping.Mapper, s *emitter.Stick) *StickTranslator {
	return &StickTranslator{mapper: m, stick: s}
}

func (t *StickTranslator) Translate(cond protocol.Sample) error {
	return t.stick.Emit(t.mapper.Map(cond))
}

func (t *StickTranslator) Center() error {
	press, release := t.mapper.SnapCenter()
	if len(press) == 0 {
		return nil
	}
	return t.stick.Pulse(press, release)
}
