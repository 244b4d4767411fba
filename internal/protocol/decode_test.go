package protocol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTrip(t *testing.T) {
	in := Sample{X: 1.5, Y: -2.25, Z: 0, Yaw: 33.125, Pitch: -89.5, Roll: 0.0625}
	payload := Append(nil, in)
	require.Len(t, payload, PacketSize)

	out, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeWireOrder(t *testing.T) {
	// 1.0 little-endian at offset 24 must land on yaw, not on z.
	payload := make([]byte, PacketSize)
	copy(payload[24:], Append(nil, Sample{X: 1.0})[:8])

	s, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Yaw)
	assert.Zero(t, s.Z)
}

func TestDecodeRejectsBadLength(t *testing.T) {
	for _, n := range []int{0, 47, 49, 96} {
		_, err := Decode(make([]byte, n))
		assert.ErrorIs(t, err, ErrMalformedPacket, "length %d", n)
	}
}

func TestDecodePassesNonFiniteThrough(t *testing.T) {
	payload := Append(nil, Sample{Yaw: math.NaN(), Pitch: math.Inf(1)})
	s, err := Decode(payload)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Yaw))
	assert.True(t, math.IsInf(s.Pitch, 1))
}

func TestAxisNames(t *testing.T) {
	a, ok := ParseAxis("pitch")
	require.True(t, ok)
	assert.Equal(t, AxisPitch, a)
	assert.Equal(t, "pitch", a.String())

	_, ok = ParseAxis("warp")
	assert.False(t, ok)
}
