// Package protocol decodes the opentrack UDP wire format: each packet
// is exactly six little-endian IEEE-754 doubles in the fixed order
// x, y, z, yaw, pitch, roll. No header, no sequence number, no checksum.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// PacketSize is the only valid datagram length.
const PacketSize = NumAxes * 8

// ErrMalformedPacket reports a datagram that is not exactly 48 bytes.
// Malformed packets are dropped by the caller; they are never fatal.
var ErrMalformedPacket = errors.New("malformed opentrack packet")

// Decode parses a datagram payload into a Sample. NaN and infinity
// values pass through undisturbed; the conditioner is responsible for
// keeping them out of the filters.
func Decode(payload []byte) (Sample, error) {
	if len(payload) != PacketSize {
		return Sample{}, fmt.Errorf("%w: %d bytes, want %d", ErrMalformedPacket, len(payload), PacketSize)
	}
	var v [NumAxes]float64
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	return FromValues(v), nil
}

// Append encodes a Sample in wire format, appending to dst. Used by
// tests and by simulated feeds.
func Append(dst []byte, s Sample) []byte {
	for _, v := range s.Values() {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
	}
	return dst
}
