// Package filter holds the time-domain conditioning applied to the raw
// tracking feed: per-axis exponential smoothing, gap interpolation when
// the feed stalls, and the auto-center dwell detector.
package filter

// Smoother is a single-axis exponential moving average. Smaller alpha
// values smooth more; alpha 1.0 disables smoothing entirely.
type Smoother struct {
	alpha float64
	value float64
}

// NewSmoother creates a smoother with accumulator zero. Alpha must be
// in (0, 1]; config validation enforces that before construction.
func NewSmoother(alpha float64) Smoother {
	return Smoother{alpha: alpha}
}

// Smooth feeds one raw value and returns the new smoothed value.
func (s *Smoother) Smooth(raw float64) float64 {
	s.value = s.alpha*raw + (1-s.alpha)*s.value
	return s.value
}

// Nudge shifts the accumulator by delta without new stimulus. Used by
// extrapolating gap-fill to carry motion through a feed stall.
func (s *Smoother) Nudge(delta float64) float64 {
	s.value += delta
	return s.value
}

// Value returns the current smoothed value.
func (s *Smoother) Value() float64 {
	return s.value
}

// Reset returns the accumulator to zero.
func (s *Smoother) Reset() {
	s.value = 0
}
