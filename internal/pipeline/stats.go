package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/digitaltrails/opentrack-opal/internal/monitor"
	"github.com/digitaltrails/opentrack-opal/internal/protocol"
)

// Stats counts loop activity. Counters are atomic because the monitor
// server reads them from its own goroutine.
type Stats struct {
	mode    string
	started time.Time

	packets     atomic.Uint64
	malformed   atomic.Uint64
	coastTicks  atomic.Uint64
	autoCenters atomic.Uint64

	mu       sync.Mutex
	lastRaw  *protocol.Sample
	lastCond *protocol.Sample
}

// NewStats starts a counter set for the given mode label.
func NewStats(mode string) *Stats {
	return &Stats{mode: mode, started: time.Now()}
}

func (s *Stats) countPacket(raw, cond protocol.Sample) {
	s.packets.Add(1)
	s.mu.Lock()
	s.lastRaw = &raw
	s.lastCond = &cond
	s.mu.Unlock()
}

func (s *Stats) countCoast(cond protocol.Sample) {
	s.coastTicks.Add(1)
	s.mu.Lock()
	s.lastCond = &cond
	s.mu.Unlock()
}

func (s *Stats) countMalformed()  { s.malformed.Add(1) }
func (s *Stats) countAutoCenter() { s.autoCenters.Add(1) }

// Snapshot renders the counters for the monitor surface. Substituted
// is supplied by the caller because the conditioner owns that count.
func (s *Stats) Snapshot(substituted uint64) monitor.Status {
	st := monitor.Status{
		Mode:        s.mode,
		Started:     s.started,
		Packets:     s.packets.Load(),
		Malformed:   s.malformed.Load(),
		CoastTicks:  s.coastTicks.Load(),
		Substituted: substituted,
		AutoCenters: s.autoCenters.Load(),
	}
	s.mu.Lock()
	if s.lastRaw != nil {
		st.LastRaw = s.lastRaw.Values()
	}
	if s.lastCond != nil {
		st.LastCond = s.lastCond.Values()
	}
	s.mu.Unlock()
	return st
}
