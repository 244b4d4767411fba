package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitaltrails/opentrack-opal/internal/filter"
	"github.com/digitaltrails/opentrack-opal/internal/protocol"
)

type fakeTranslator struct {
	mu           sync.Mutex
	ticks        []protocol.Sample
	centers      int
	translateErr error
}

func (f *fakeTranslator) Translate(cond protocol.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.translateErr != nil {
		return f.translateErr
	}
	f.ticks = append(f.ticks, cond)
	return nil
}

func (f *fakeTranslator) Center() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.centers++
	return nil
}

func (f *fakeTranslator) tickCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ticks)
}

func (f *fakeTranslator) centerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.centers
}

func (f *fakeTranslator) lastTick() protocol.Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ticks[len(f.ticks)-1]
}

type harness struct {
	p      *Pipeline
	tr     *fakeTranslator
	sender *net.UDPConn
	cancel context.CancelFunc
	done   chan error
}

func startHarness(t *testing.T, ac *filter.AutoCenter, tr *fakeTranslator) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	conn, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	sender, err := net.DialUDP("udp", nil, conn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	t.Cleanup(func() { sender.Close() })

	cond := filter.NewConditioner(1.0, filter.CoastHold, log)
	p := New(conn, cond, ac, tr, time.Millisecond, NewStats("test"), log, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	h := &harness{p: p, tr: tr, sender: sender, cancel: cancel, done: done}
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(time.Second):
			t.Error("pipeline did not stop")
		}
	})
	return h
}

func (h *harness) send(t *testing.T, s protocol.Sample) {
	t.Helper()
	_, err := h.sender.Write(protocol.Append(nil, s))
	require.NoError(t, err)
}

func TestPacketReachesTranslator(t *testing.T) {
	tr := &fakeTranslator{}
	h := startHarness(t, nil, tr)

	want := protocol.Sample{Yaw: 30, Pitch: -10}
	h.send(t, want)

	require.Eventually(t, func() bool { return tr.tickCount() > 0 },
		time.Second, time.Millisecond)

	// Alpha 1 makes the conditioner an identity on the first packet.
	assert.Equal(t, want, tr.ticks[0])
	assert.Equal(t, uint64(1), h.p.Stats().packets.Load())
}

func TestMalformedPacketDropped(t *testing.T) {
	tr := &fakeTranslator{}
	h := startHarness(t, nil, tr)

	_, err := h.sender.Write(make([]byte, 20))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return h.p.Stats().malformed.Load() == 1 },
		time.Second, time.Millisecond)

	// The bad datagram produced no tick and left the filters unprimed:
	// a following good packet is still the first real sample.
	want := protocol.Sample{X: 5}
	h.send(t, want)
	require.Eventually(t, func() bool { return tr.tickCount() > 0 },
		time.Second, time.Millisecond)
	assert.Equal(t, want, tr.ticks[0])
}

func TestNoCoastBeforeFirstPacket(t *testing.T) {
	tr := &fakeTranslator{}
	h := startHarness(t, nil, tr)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, tr.tickCount())
	assert.Equal(t, uint64(0), h.p.Stats().coastTicks.Load())
}

func TestCoastHoldsAfterSilence(t *testing.T) {
	tr := &fakeTranslator{}
	h := startHarness(t, nil, tr)

	want := protocol.Sample{Yaw: 45}
	h.send(t, want)

	// With the feed gone quiet the loop keeps ticking on timeouts.
	require.Eventually(t, func() bool { return h.p.Stats().coastTicks.Load() > 3 },
		time.Second, time.Millisecond)

	// Hold mode pins the output at the last smoothed value.
	assert.Equal(t, want, tr.lastTick())
}

func TestAutoCenterFiresOnceAndConsumesTick(t *testing.T) {
	tr := &fakeTranslator{}
	ac := filter.NewAutoCenter(5.0, 20*time.Millisecond, nil)
	h := startHarness(t, ac, tr)

	// Leave the zone so the detector arms.
	h.send(t, protocol.Sample{Yaw: 50})
	require.Eventually(t, func() bool { return tr.tickCount() > 0 },
		time.Second, time.Millisecond)

	// Dwell at center until the action fires.
	deadline := time.Now().Add(time.Second)
	for tr.centerCount() == 0 && time.Now().Before(deadline) {
		h.send(t, protocol.Sample{})
		time.Sleep(2 * time.Millisecond)
	}
	require.Equal(t, 1, tr.centerCount())
	assert.Equal(t, uint64(1), h.p.Stats().autoCenters.Load())

	// Staying centered must not fire again.
	for i := 0; i < 20; i++ {
		h.send(t, protocol.Sample{})
		time.Sleep(2 * time.Millisecond)
	}
	assert.Equal(t, 1, tr.centerCount())
}

func TestTranslateFailureIsFatal(t *testing.T) {
	boom := errors.New("device gone")
	tr := &fakeTranslator{translateErr: boom}
	h := startHarness(t, nil, tr)

	h.send(t, protocol.Sample{Yaw: 10})

	select {
	case err := <-h.done:
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "emit tick")
	case <-time.After(time.Second):
		t.Fatal("pipeline did not fail")
	}
	// Stop the cleanup goroutine from double-reading done.
	h.done <- nil
}

func TestSnapshotReflectsCounters(t *testing.T) {
	tr := &fakeTranslator{}
	h := startHarness(t, nil, tr)

	h.send(t, protocol.Sample{Yaw: 30})
	require.Eventually(t, func() bool { return tr.tickCount() > 0 },
		time.Second, time.Millisecond)

	st := h.p.Snapshot()
	assert.Equal(t, "test", st.Mode)
	assert.Equal(t, uint64(1), st.Packets)
	require.Len(t, st.LastRaw, protocol.NumAxes)
	assert.Equal(t, 30.0, st.LastRaw[protocol.AxisYaw])
}
