package evdev

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce interval for filesystem event bursts; udev touches several
// nodes per plug or unplug.
const rescanDebounce = 500 * time.Millisecond

// WatchEvent reports a change in the set of connected devices.
type WatchEvent struct {
	Added   []DeviceInfo
	Removed []DeviceInfo
}

// Watcher reports device hotplug by rescanning /dev/input/by-id when
// the directory changes.
type Watcher struct {
	fs    *fsnotify.Watcher
	known map[string]DeviceInfo
	log   *slog.Logger
}

// NewWatcher starts watching the by-id directory. The initial device
// set is captured so the first events reflect real changes only.
func NewWatcher(log *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(byIDDir); err != nil {
		fs.Close()
		return nil, err
	}

	known := make(map[string]DeviceInfo)
	if devices, err := ScanDevices(); err == nil {
		for _, d := range devices {
			known[d.Name] = d
		}
	}

	return &Watcher{fs: fs, known: known, log: log}, nil
}

// Run delivers hotplug events to out until ctx is cancelled. Bursts of
// filesystem events collapse into a single rescan.
func (w *Watcher) Run(ctx context.Context, out chan<- WatchEvent) error {
	timer := time.NewTimer(rescanDebounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if ev, changed := w.rescan(); changed {
				select {
				case out <- ev:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("input directory changed", "op", event.Op.String(), "path", event.Name)
			if !pending {
				pending = true
				timer.Reset(rescanDebounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("device watch error", "error", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) rescan() (WatchEvent, bool) {
	devices, err := ScanDevices()
	if err != nil {
		w.log.Warn("device rescan failed", "error", err)
		return WatchEvent{}, false
	}

	current := make(map[string]DeviceInfo, len(devices))
	for _, d := range devices {
		current[d.Name] = d
	}

	var ev WatchEvent
	for name, d := range current {
		if _, ok := w.known[name]; !ok {
			ev.Added = append(ev.Added, d)
		}
	}
	for name, d := range w.known {
		if _, ok := current[name]; !ok {
			ev.Removed = append(ev.Removed, d)
		}
	}
	w.known = current

	return ev, len(ev.Added) > 0 || len(ev.Removed) > 0
}
