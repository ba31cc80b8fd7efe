// Package control provides the coordinator's HTTP control plane: health
// checks, a read-only /api/state snapshot, and a small set of /api/admin session
// controls for a server-variant coordinator. The router construction
// follows the pure-constructor/DI shape used elsewhere in the corpus —
// NewRouter has no side effects, making it safe under httptest.
package control

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Session is the subset of coordinator.Server a control-plane handler
// needs. Kept minimal and mockable, same shape as the teacher's
// EngineInterface.
type Session interface {
	Snapshot() StateSnapshot
	GameStart()
	SetSpeed(speed int)
}

// RouterConfig bundles the dependencies NewRouter needs.
type RouterConfig struct {
	// Session is required.
	Session Session

	// CORSOrigins defaults to localhost-only if nil.
	CORSOrigins []string

	// DisableLogging turns off the request logger middleware, useful in
	// benchmarks and tests.
	DisableLogging bool
}

// NewRouter builds the control-plane mux. It starts no goroutines and
// opens no listeners.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &handlers{session: cfg.Session}

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleState)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/start", h.handleStart)
			r.Post("/speed", h.handleSetSpeed)
		})
	})

	return r
}

type handlers struct {
	session Session
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *handlers) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.session.Snapshot())
}

func (h *handlers) handleStart(w http.ResponseWriter, r *http.Request) {
	h.session.GameStart()
	writeJSON(w, map[string]string{"status": "started"})
}
