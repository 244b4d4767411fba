package monitor

import (
	"sync"

	"github.com/digitaltrails/opentrack-opal/internal/trace"
)

// clientBuffer bounds the per-client backlog. A browser that cannot
// keep up loses ticks rather than stalling the translation loop.
const clientBuffer = 64

type hub struct {
	mu      sync.Mutex
	clients map[chan trace.Tick]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[chan trace.Tick]struct{})}
}

func (h *hub) subscribe() chan trace.Tick {
	ch := make(chan trace.Tick, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan trace.Tick) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// publish fans a tick out to every client without blocking.
func (h *hub) publish(t trace.Tick) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- t:
		default:
		}
	}
}

func (h *hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
