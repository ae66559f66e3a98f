// Package diagnostics exposes the running client's network state over HTTP:
// a Prometheus /metrics endpoint, a /healthz liveness check, and a
// /debug/state endpoint for ad-hoc inspection. Server also owns the one
// mutex in this repo that serializes Engine access across goroutines: its
// own handlers take it, and cmd/client takes it (via Lock/Unlock) around the
// transport loop's writes and the render loop's calls.
package diagnostics

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hknc0/orbit/internal/netstate"
)

// stateSnapshot is the JSON body served at /debug/state.
type stateSnapshot struct {
	Tick                 uint64  `json:"tick"`
	BufferLength         int     `json:"bufferLength"`
	InterpolationDelayMs float64 `json:"interpolationDelayMs"`
	PendingInputCount    int     `json:"pendingInputCount"`
}

// Engine is the narrow read surface Server needs from netstate.Engine.
type Engine interface {
	GetCurrentTick() netstate.Tick
	BufferLength() int
	InterpolationDelayMs() float64
	PendingInputCount() int
}

// Server serves diagnostics HTTP endpoints backed by a guarded Engine.
// Reads take mu while gathering each request's values (not while encoding
// the response), mirroring the teacher's
// single-hub-mutex pattern but sized down to one read lock instead of a
// full connection registry.
type Server struct {
	mu     sync.Mutex
	engine Engine
	mux    *chi.Mux
}

// NewServer builds a Server wrapping engine. corsOrigins follows the
// teacher's cors.Handler usage; pass nil to allow only same-origin requests.
func NewServer(engine Engine, corsOrigins []string) *Server {
	s := &Server{engine: engine}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET"},
		}))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/debug/state", s.handleDebugState)
	r.Handle("/metrics", promhttp.Handler())

	s.mux = r
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleDebugState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := stateSnapshot{
		Tick:                 uint64(s.engine.GetCurrentTick()),
		BufferLength:         s.engine.BufferLength(),
		InterpolationDelayMs: s.engine.InterpolationDelayMs(),
		PendingInputCount:    s.engine.PendingInputCount(),
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Lock and Unlock let the owning goroutine (the transport read loop or the
// render loop) serialize its Engine writes against Server's reads. Call
// Lock before mutating the wrapped Engine and Unlock immediately after;
// Server's own handlers take the same mutex before reading.
func (s *Server) Lock()   { s.mu.Lock() }
func (s *Server) Unlock() { s.mu.Unlock() }
