// Package trace records the per-tick signal path as JSON lines so a
// session can be replayed or charted after the fact.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/digitaltrails/opentrack-opal/internal/protocol"
)

// Tick captures one loop iteration. Raw is absent on coast ticks.
type Tick struct {
	// Time is milliseconds since the recording started.
	Time int64 `json:"t"`
	// Coast marks a tick synthesized after a receive timeout.
	Coast bool `json:"coast,omitempty"`
	// Raw is the decoded packet, nil when coasting.
	Raw []float64 `json:"raw,omitempty"`
	// Cond is the conditioned output fed to the emitter.
	Cond []float64 `json:"cond"`
}

// Recorder appends ticks to a JSONL file.
type Recorder struct {
	file  *os.File
	w     *bufio.Writer
	enc   *json.Encoder
	start time.Time
}

// NewRecorder creates or truncates the trace file.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	return &Recorder{
		file:  f,
		w:     w,
		enc:   json.NewEncoder(w),
		start: time.Now(),
	}, nil
}

// Record writes one tick. A nil raw sample marks a coast tick.
func (r *Recorder) Record(raw *protocol.Sample, cond protocol.Sample, now time.Time) error {
	tick := Tick{
		Time: now.Sub(r.start).Milliseconds(),
		Cond: cond.Values(),
	}
	if raw != nil {
		tick.Raw = raw.Values()
	} else {
		tick.Coast = true
	}
	return r.enc.Encode(tick)
}

// Close flushes buffered ticks and closes the file.
func (r *Recorder) Close() error {
	if err := r.w.Flush(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Load reads a trace file back into memory.
func Load(path string) ([]Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", path, err)
	}
	defer f.Close()

	var ticks []Tick
	dec := json.NewDecoder(bufio.NewReader(f))
	for dec.More() {
		var t Tick
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("decode trace %s: %w", path, err)
		}
		ticks = append(ticks, t)
	}
	return ticks, nil
}
