package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/digitaltrails/opentrack-opal/internal/protocol"
)

// runDwell feeds samples at a fixed cadence and counts fires.
func runDwell(a *AutoCenter, samples []protocol.Sample, step time.Duration) int {
	fires := 0
	now := time.Unix(1000, 0)
	for _, s := range samples {
		if a.Observe(s, now) {
			fires++
		}
		now = now.Add(step)
	}
	return fires
}

func repeat(s protocol.Sample, n int) []protocol.Sample {
	out := make([]protocol.Sample, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestZeroZoneDisables(t *testing.T) {
	a := NewAutoCenter(0, time.Second, nil)
	assert.False(t, a.Enabled())
	assert.Zero(t, runDwell(a, repeat(protocol.Sample{}, 500), 10*time.Millisecond))
}

func TestFiresOncePerDwellEpisode(t *testing.T) {
	a := NewAutoCenter(5.0, time.Second, nil)

	// Must leave the zone once before the detector can fire at all.
	var feed []protocol.Sample
	feed = append(feed, protocol.Sample{Yaw: 30})
	// 1.2s of ticks at 10ms, everything at 3.0: exactly one fire.
	feed = append(feed, repeat(protocol.Sample{X: 3, Y: 3, Yaw: 3, Pitch: 3, Roll: 3}, 120)...)
	assert.Equal(t, 1, runDwell(a, feed, 10*time.Millisecond))
	assert.True(t, a.Armed())
}

func TestSpikeResetsDwellTimer(t *testing.T) {
	a := NewAutoCenter(5.0, time.Second, nil)
	in := protocol.Sample{X: 3}
	now := time.Unix(1000, 0)
	step := func(s protocol.Sample) bool {
		fired := a.Observe(s, now)
		now = now.Add(10 * time.Millisecond)
		return fired
	}

	step(protocol.Sample{Yaw: 30}) // arm
	for i := 0; i < 50; i++ {      // 0.5s in zone
		assert.False(t, step(in))
	}
	assert.False(t, step(protocol.Sample{X: 6})) // spike out: timer resets
	fires := 0
	for i := 0; i < 130; i++ { // 1.3s back in zone
		if step(in) {
			fires++
		}
	}
	// The dwell restarted after the spike and still fired exactly once.
	assert.Equal(t, 1, fires)
}

func TestRequiresZoneExitBeforeRefiring(t *testing.T) {
	a := NewAutoCenter(5.0, 100*time.Millisecond, nil)
	var feed []protocol.Sample
	feed = append(feed, protocol.Sample{Pitch: 50})
	feed = append(feed, repeat(protocol.Sample{}, 300)...) // long rest: one fire only
	assert.Equal(t, 1, runDwell(a, feed, 10*time.Millisecond))

	// Exit and re-enter: a second episode, a second fire.
	var again []protocol.Sample
	again = append(again, protocol.Sample{Pitch: 50})
	again = append(again, repeat(protocol.Sample{}, 50)...)
	assert.Equal(t, 1, runDwell(a, again, 10*time.Millisecond))
}

func TestUnmonitoredAxisIsIgnored(t *testing.T) {
	// z is outside the default monitored set; a huge z offset must not
	// block the dwell.
	a := NewAutoCenter(5.0, 100*time.Millisecond, nil)
	var feed []protocol.Sample
	feed = append(feed, protocol.Sample{Yaw: 30})
	feed = append(feed, repeat(protocol.Sample{Z: 60}, 50)...)
	assert.Equal(t, 1, runDwell(a, feed, 10*time.Millisecond))
}

func TestCustomMonitoredSubset(t *testing.T) {
	a := NewAutoCenter(5.0, 100*time.Millisecond, []protocol.Axis{protocol.AxisYaw})
	var feed []protocol.Sample
	feed = append(feed, protocol.Sample{Yaw: 30})
	// Pitch far out of zone, but only yaw is monitored.
	feed = append(feed, repeat(protocol.Sample{Pitch: 80}, 50)...)
	assert.Equal(t, 1, runDwell(a, feed, 10*time.Millisecond))
}
