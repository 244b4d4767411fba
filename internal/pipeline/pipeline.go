// Package pipeline runs the translation loop: UDP telemetry in,
// virtual device events out, one conditioned tick at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/digitaltrails/opentrack-opal/internal/filter"
	"github.com/digitaltrails/opentrack-opal/internal/monitor"
	"github.com/digitaltrails/opentrack-opal/internal/protocol"
	"github.com/digitaltrails/opentrack-opal/internal/trace"
)

// Listen binds the UDP socket the tracker sends to.
func Listen(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return conn, nil
}

// Pipeline owns one translation session.
type Pipeline struct {
	conn       *net.UDPConn
	cond       *filter.Conditioner
	autoCenter *filter.AutoCenter
	translator Translator
	wait       time.Duration
	stats      *Stats
	recorder   *trace.Recorder
	mon        *monitor.Server
	log        *slog.Logger

	// primed flips once the first packet arrives; before that there is
	// nothing to coast from and timeouts are silent.
	primed bool
}

// Options carries the optional attachments.
type Options struct {
	Recorder *trace.Recorder
	Monitor  *monitor.Server
}

// New assembles a pipeline. The caller keeps ownership of conn and the
// translator's device; Run does not close them.
func New(conn *net.UDPConn, cond *filter.Conditioner, ac *filter.AutoCenter,
	tr Translator, wait time.Duration, stats *Stats, log *slog.Logger, opts Options) *Pipeline {
	return &Pipeline{
		conn:       conn,
		cond:       cond,
		autoCenter: ac,
		translator: tr,
		wait:       wait,
		stats:      stats,
		recorder:   opts.Recorder,
		mon:        opts.Monitor,
		log:        log,
	}
}

// Stats exposes the counter set for status snapshots.
func (p *Pipeline) Stats() *Stats { return p.stats }

// Snapshot renders the monitor status.
func (p *Pipeline) Snapshot() monitor.Status {
	return p.stats.Snapshot(p.cond.Substituted())
}

// Run executes the loop until ctx is cancelled or a device write
// fails. A write failure is fatal: the virtual device is gone and
// silently dropping motion would leave the pointer or stick wedged.
func (p *Pipeline) Run(ctx context.Context) error {
	buf := make([]byte, 2*protocol.PacketSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := p.conn.SetReadDeadline(time.Now().Add(p.wait)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}

		n, _, err := p.conn.ReadFromUDP(buf)
		now := time.Now()

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if !p.primed {
					continue
				}
				if err := p.coastTick(now); err != nil {
					return err
				}
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("udp receive: %w", err)
		}

		raw, err := protocol.Decode(buf[:n])
		if err != nil {
			p.stats.countMalformed()
			p.log.Debug("malformed packet dropped", "bytes", n, "error", err)
			continue
		}

		if err := p.dataTick(raw, now); err != nil {
			return err
		}
	}
}

// dataTick processes a decoded packet.
func (p *Pipeline) dataTick(raw protocol.Sample, now time.Time) error {
	cond := p.cond.Feed(raw, now)
	p.primed = true
	p.stats.countPacket(raw, cond)
	p.publish(&raw, cond, now)

	// Auto-center is judged on real data only; a fired center consumes
	// the tick so the recoil of the centering action is not also
	// emitted as motion.
	if p.autoCenter != nil && p.autoCenter.Enabled() && p.autoCenter.Observe(cond, now) {
		p.stats.countAutoCenter()
		p.log.Info("auto-center fired")
		if err := p.translator.Center(); err != nil {
			return fmt.Errorf("auto-center action: %w", err)
		}
		return nil
	}

	if err := p.translator.Translate(cond); err != nil {
		return fmt.Errorf("emit tick: %w", err)
	}
	return nil
}

// coastTick synthesizes a tick after a receive timeout.
func (p *Pipeline) coastTick(now time.Time) error {
	cond := p.cond.Coast(now)
	p.stats.countCoast(cond)
	p.publish(nil, cond, now)

	if err := p.translator.Translate(cond); err != nil {
		return fmt.Errorf("emit coast tick: %w", err)
	}
	return nil
}

func (p *Pipeline) publish(raw *protocol.Sample, cond protocol.Sample, now time.Time) {
	if p.recorder != nil {
		if err := p.recorder.Record(raw, cond, now); err != nil {
			p.log.Warn("trace record failed", "error", err)
			p.recorder = nil
		}
	}
	if p.mon != nil {
		tick := trace.Tick{Time: now.UnixMilli(), Cond: cond.Values()}
		if raw != nil {
			tick.Raw = raw.Values()
		} else {
			tick.Coast = true
		}
		p.mon.PublishTick(tick)
	}
}
