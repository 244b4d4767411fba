package filter

import (
	"time"

	"github.com/digitaltrails/opentrack-opal/internal/protocol"
)

// DefaultMonitoredAxes is the set the dwell detector watches unless
// configured otherwise: everything except z, the forward/backward
// offset, which drifts while leaning toward the screen.
var DefaultMonitoredAxes = []protocol.Axis{
	protocol.AxisX, protocol.AxisY,
	protocol.AxisYaw, protocol.AxisPitch, protocol.AxisRoll,
}

// AutoCenter is the dwell-zone state machine. When every monitored
// axis stays within [-zone, +zone] continuously for the dwell period
// it fires once, then stays disarmed until the zone is exited and
// re-entered. The debounce is load-bearing: without it a centering
// action would repeat on every tick while the head rests.
type AutoCenter struct {
	zone      float64
	dwell     time.Duration
	monitored [protocol.NumAxes]bool

	inZoneSince time.Time
	arrived     bool
	centered    bool
}

// NewAutoCenter builds a detector. A zone of zero (the default)
// disables it. A nil axes slice selects DefaultMonitoredAxes.
func NewAutoCenter(zone float64, dwell time.Duration, axes []protocol.Axis) *AutoCenter {
	a := &AutoCenter{zone: zone, dwell: dwell, centered: true}
	if axes == nil {
		axes = DefaultMonitoredAxes
	}
	for _, ax := range axes {
		if ax >= 0 && ax < protocol.NumAxes {
			a.monitored[ax] = true
		}
	}
	return a
}

// Enabled reports whether the detector can ever fire.
func (a *AutoCenter) Enabled() bool {
	return a.zone > 0
}

// Observe feeds one conditioned sample and reports whether a centering
// action should fire on this tick. At most one fire per dwell episode.
func (a *AutoCenter) Observe(s protocol.Sample, now time.Time) bool {
	if !a.Enabled() {
		return false
	}
	values := s.Values()
	for i, v := range values {
		if !a.monitored[i] {
			continue
		}
		if v < -a.zone || v > a.zone {
			// Off center: the episode ends and the detector re-arms.
			a.centered = false
			a.arrived = false
			return false
		}
	}
	if a.centered {
		// Already fired for this episode, or never left the zone.
		return false
	}
	if !a.arrived {
		a.arrived = true
		a.inZoneSince = now
		return false
	}
	if now.Sub(a.inZoneSince) < a.dwell {
		return false
	}
	a.centered = true
	a.arrived = false
	return true
}

// Armed reports whether the detector is between a fire and the next
// zone exit.
func (a *AutoCenter) Armed() bool {
	return a.centered
}
