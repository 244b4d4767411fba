// Package monitor exposes a small debug HTTP surface: a status
// snapshot and a live websocket feed of translation ticks.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/browser"

	"github.com/digitaltrails/opentrack-opal/internal/trace"
)

// Status is the /status snapshot. The pipeline fills it on demand.
type Status struct {
	Mode          string    `json:"mode"`
	Started       time.Time `json:"started"`
	Packets       uint64    `json:"packets"`
	Malformed     uint64    `json:"malformed"`
	CoastTicks    uint64    `json:"coast_ticks"`
	Substituted   uint64    `json:"substituted"`
	AutoCenters   uint64    `json:"auto_centers"`
	LastRaw       []float64 `json:"last_raw,omitempty"`
	LastCond      []float64 `json:"last_cond,omitempty"`
	WriteFailures uint64    `json:"write_failures"`
}

// StatusFunc produces the current status snapshot.
type StatusFunc func() Status

// Server serves the debug surface on loopback.
type Server struct {
	srv    *http.Server
	hub    *hub
	status StatusFunc
	log    *slog.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewServer builds the debug server on the given port.
func NewServer(port int, status StatusFunc, log *slog.Logger) *Server {
	s := &Server{
		hub:    newHub(),
		status: status,
		log:    log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWS)

	s.srv = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	return s
}

// Start serves until Stop is called. http.ErrServerClosed is mapped to
// nil so a clean shutdown does not look like a failure.
func (s *Server) Start() error {
	s.log.Info("monitor listening", "addr", "http://"+s.srv.Addr)
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight handlers.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// OpenPage opens the monitor index in the default browser.
func (s *Server) OpenPage() error {
	return browser.OpenURL("http://" + s.srv.Addr + "/")
}

// PublishTick fans a translation tick out to connected websocket
// clients. Safe to call from the pipeline loop; never blocks.
func (s *Server) PublishTick(t trace.Tick) {
	s.hub.publish(t)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	s.log.Debug("websocket client connected", "remote", r.RemoteAddr, "clients", s.hub.clientCount())

	// Drain control frames so close is noticed while we only write.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case tick := <-ch:
			if err := conn.WriteJSON(tick); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>opentrack-opal monitor</title></head>
<body>
<h1>opentrack-opal monitor</h1>
<pre id="status">loading...</pre>
<pre id="tick"></pre>
<script>
async function poll() {
  const r = await fetch('/status');
  document.getElementById('status').textContent = JSON.stringify(await r.json(), null, 2);
}
poll();
setInterval(poll, 1000);
const ws = new WebSocket('ws://' + location.host + '/ws');
ws.onmessage = e => { document.getElementById('tick').textContent = e.data; };
</script>
</body>
</html>
`
