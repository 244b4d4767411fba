package filter

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/digitaltrails/opentrack-opal/internal/protocol"
)

// CoastMode selects how a timeout tick is synthesized when no datagram
// has arrived within the wait interval.
type CoastMode int

const (
	// CoastExtrapolate continues each axis at its last real per-tick
	// velocity, so relative motion carries on through the gap. Used for
	// mouse emulation.
	CoastExtrapolate CoastMode = iota

	// CoastHold re-feeds the last smoothed value into the EMA with no
	// new stimulus, so the output holds rather than drifts. Used for
	// stick emulation, where the target is an absolute position.
	CoastHold
)

// Conditioner owns all six axis filters and produces exactly one
// conditioned sample per logical tick, whether or not wire data
// arrived. It never fails: before any data has arrived the output is
// all zeros.
type Conditioner struct {
	mode        CoastMode
	smoothers   [protocol.NumAxes]Smoother
	velocity    [protocol.NumAxes]float64
	lastUpdate time.Time
	log        *slog.Logger

	// substituted is read by the monitor goroutine.
	substituted atomic.Uint64
}

// NewConditioner builds a conditioner. Alpha applies identically to
// all six axes; mode is fixed for the lifetime of the pipeline.
func NewConditioner(alpha float64, mode CoastMode, log *slog.Logger) *Conditioner {
	c := &Conditioner{mode: mode, log: log}
	for i := range c.smoothers {
		c.smoothers[i] = NewSmoother(alpha)
	}
	return c
}

// Feed consumes a freshly decoded sample and returns the conditioned
// sample for this tick. Non-finite raw values never reach the EMA:
// NaN is absorbing and a single poisoned packet would corrupt the
// filter for good, so the axis's last finite smoothed value is
// substituted instead.
func (c *Conditioner) Feed(s protocol.Sample, now time.Time) protocol.Sample {
	raw := s.Values()
	var out [protocol.NumAxes]float64
	for i := range raw {
		v := raw[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.substituted.Add(1)
			if c.log != nil {
				c.log.Debug("non-finite sample substituted",
					"axis", protocol.Axis(i).String(), "raw", v)
			}
			v = c.smoothers[i].Value()
		}
		prev := c.smoothers[i].Value()
		out[i] = c.smoothers[i].Smooth(v)
		c.velocity[i] = out[i] - prev
	}
	c.lastUpdate = now
	return protocol.FromValues(out)
}

// Coast synthesizes a tick for a receive timeout. In extrapolate mode
// each axis keeps moving at its last real velocity; in hold mode the
// filter is re-fed its own output, which pins it at the last real
// smoothed value.
func (c *Conditioner) Coast(now time.Time) protocol.Sample {
	var out [protocol.NumAxes]float64
	for i := range c.smoothers {
		switch c.mode {
		case CoastExtrapolate:
			out[i] = c.smoothers[i].Nudge(c.velocity[i])
		case CoastHold:
			out[i] = c.smoothers[i].Smooth(c.smoothers[i].Value())
		}
	}
	return protocol.FromValues(out)
}

// LastUpdate reports when real wire data last reached the filters.
func (c *Conditioner) LastUpdate() time.Time {
	return c.lastUpdate
}

// Substituted reports how many non-finite raw values have been
// replaced since startup.
func (c *Conditioner) Substituted() uint64 {
	return c.substituted.Load()
}
