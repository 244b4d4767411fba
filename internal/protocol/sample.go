package protocol

// Axis identifies one of the six opentrack tracking axes, in wire order.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisYaw
	AxisPitch
	AxisRoll

	// NumAxes is the fixed number of tracking axes per packet.
	NumAxes = 6
)

var axisNames = [NumAxes]string{"x", "y", "z", "yaw", "pitch", "roll"}

func (a Axis) String() string {
	if a < 0 || a >= NumAxes {
		return "unknown"
	}
	return axisNames[a]
}

// ParseAxis maps an axis name back to its identifier.
func ParseAxis(name string) (Axis, bool) {
	for i, n := range axisNames {
		if n == name {
			return Axis(i), true
		}
	}
	return 0, false
}

// Tracking-space ranges opentrack emits for each axis. Translation axes
// are centimeters of head displacement, rotation axes are degrees.
const (
	TranslationMin = -75.0
	TranslationMax = 75.0
	RotationMin    = -90.0
	RotationMax    = 90.0
)

// Range returns the nominal opentrack output range for the axis.
func (a Axis) Range() (min, max float64) {
	if a <= AxisZ {
		return TranslationMin, TranslationMax
	}
	return RotationMin, RotationMax
}

// Sample is one 6-axis tracking reading. Raw samples come straight off
// the wire; the conditioner produces values of the same shape.
type Sample struct {
	X     float64
	Y     float64
	Z     float64
	Yaw   float64
	Pitch float64
	Roll  float64
}

// Values returns the axes in wire order.
func (s Sample) Values() []float64 {
	return []float64{s.X, s.Y, s.Z, s.Yaw, s.Pitch, s.Roll}
}

// FromValues builds a Sample from axes in wire order.
func FromValues(v [NumAxes]float64) Sample {
	return Sample{X: v[0], Y: v[1], Z: v[2], Yaw: v[3], Pitch: v[4], Roll: v[5]}
}

// Value returns a single axis.
func (s Sample) Value(a Axis) float64 {
	return s.Values()[a]
}
