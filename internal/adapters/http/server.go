package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/statesim"
	"github.com/aretw0/statesim/pkg/domain"
	"github.com/aretw0/statesim/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a single simulation engine over HTTP. The engine is not
// safe for concurrent use, so every handler takes the server mutex.
type Server struct {
	mu     sync.Mutex
	engine *statesim.Engine
	store  ports.RunStore
}

// NewHandler creates a new HTTP handler for the engine. The store is
// optional; without one the /runs routes respond with 503.
func NewHandler(engine *statesim.Engine, store ports.RunStore, reg *prometheus.Registry) http.Handler {
	server := &Server{engine: engine, store: store}
	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)

	r.Post("/machine", server.LoadMachine)
	r.Get("/state", server.GetState)
	r.Post("/events", server.SendEvent)
	r.Post("/undo", server.Undo)
	r.Post("/reset", server.Reset)
	r.Get("/diagram", server.GetDiagram)
	r.Post("/replay", server.Replay)

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", server.ListRuns)
		r.Post("/", server.SaveRun)
		r.Get("/{id}", server.GetRun)
		r.Delete("/{id}", server.DeleteRun)
		r.Post("/{id}/replay", server.ReplayRun)
	})

	if reg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	return r
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "statesim-http",
		"version":     statesim.Version,
		"api_version": "0.1.0",
	})
}

// LoadMachine handles POST /machine. The body is a raw JSON or YAML
// machine definition.
func (s *Server) LoadMachine(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err = s.engine.LoadBytes(data)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusBadRequest)
		return
	}

	s.writeState(w)
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w)
}

type eventRequest struct {
	Event string `json:"event"`
	Input any    `json:"input,omitempty"`
}

// SendEvent handles POST /events.
func (s *Server) SendEvent(w http.ResponseWriter, r *http.Request) {
	var body eventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Event == "" {
		http.Error(w, "Missing event name", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err := s.engine.Send(body.Event, body.Input)
	s.mu.Unlock()
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, domain.ErrNoTransition) {
			status = http.StatusConflict
		} else if errors.Is(err, domain.ErrNoDefinition) {
			status = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf("Send error: %v", err), status)
		return
	}

	s.writeState(w)
}

// Undo handles POST /undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.engine.Undo()
	s.mu.Unlock()
	s.writeState(w)
}

// Reset handles POST /reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.engine.Reset()
	s.mu.Unlock()
	s.writeState(w)
}

// GetDiagram handles GET /diagram, returning the Mermaid source as text.
func (s *Server) GetDiagram(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.engine.State()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, snap.DiagramSource)
}

type replayRequest struct {
	Steps   []domain.ReplayStep `json:"transitions"`
	DelayMs int                 `json:"delayMs,omitempty"`
}

// Replay handles POST /replay with an inline step list.
func (s *Server) Replay(w http.ResponseWriter, r *http.Request) {
	var body replayRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.replaySteps(w, r, body.Steps, body.DelayMs)
}

func (s *Server) replaySteps(w http.ResponseWriter, r *http.Request, steps []domain.ReplayStep, delayMs int) {
	s.mu.Lock()
	err := s.engine.Replay(r.Context(), steps, time.Duration(delayMs)*time.Millisecond)
	s.mu.Unlock()
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, domain.ErrNoDefinition) {
			status = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf("Replay error: %v", err), status)
		return
	}
	s.writeState(w)
}

type saveRunRequest struct {
	Name        string              `json:"name"`
	Transitions []domain.ReplayStep `json:"transitions"`
}

// SaveRun handles POST /runs. With no explicit transitions the current
// engine history is recorded.
func (s *Server) SaveRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Run store not configured", http.StatusServiceUnavailable)
		return
	}

	var body saveRunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	def := s.engine.Definition()
	snap := s.engine.State()
	s.mu.Unlock()
	if def == nil {
		http.Error(w, "No machine loaded", http.StatusBadRequest)
		return
	}

	steps := body.Transitions
	if steps == nil {
		steps = stepsFromHistory(snap.History)
	}

	run := domain.NewRun(body.Name, def.ID, def.Context, steps)
	if err := s.store.Save(r.Context(), run); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

// ListRuns handles GET /runs.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Run store not configured", http.StatusServiceUnavailable)
		return
	}
	runs, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun handles GET /runs/{id}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Run store not configured", http.StatusServiceUnavailable)
		return
	}
	run, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// DeleteRun handles DELETE /runs/{id}.
func (s *Server) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Run store not configured", http.StatusServiceUnavailable)
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplayRun handles POST /runs/{id}/replay.
func (s *Server) ReplayRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Run store not configured", http.StatusServiceUnavailable)
		return
	}
	run, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		return
	}
	s.replaySteps(w, r, run.Transitions, 0)
}

// -- Helpers --

func (s *Server) writeState(w http.ResponseWriter) {
	s.mu.Lock()
	snap := s.engine.State()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("Response encode error: %v\n", err)
	}
}

// stepsFromHistory converts recorded history entries into replay steps,
// skipping the initial sentinel entry.
func stepsFromHistory(history []domain.HistoryEntry) []domain.ReplayStep {
	steps := make([]domain.ReplayStep, 0, len(history))
	for _, entry := range history {
		if entry.Event == domain.InitialStateEvent {
			continue
		}
		steps = append(steps, domain.ReplayStep{Event: entry.Event, Input: entry.Input})
	}
	return steps
}
