// Package api exposes the roadmap store over HTTP so other tools can read
// the layout and issue commands.
package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akyairhashvil/roadmap/internal/store"
)

type Option func(*Handler)

// WithClock sets the time source used for export dates.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(st *store.Store, logger *slog.Logger, opts ...Option) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{store: st, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	r.Get("/health", h.Health)
	r.Get("/state", h.State)
	r.Get("/layout", h.Layout)
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	r.Post("/undo", h.Undo)
	r.Post("/redo", h.Redo)

	r.Route("/timelines", func(r chi.Router) {
		r.Post("/", h.CreateTimeline)
		r.Patch("/{id}", h.RenameTimeline)
		r.Delete("/{id}", h.DeleteTimeline)
		r.Post("/{id}/activate", h.ActivateTimeline)
		r.Post("/{id}/move", h.MoveTimeline)
	})

	r.Route("/teams", func(r chi.Router) {
		r.Post("/", h.CreateTeam)
		r.Patch("/{id}", h.RenameTeam)
		r.Delete("/{id}", h.DeleteTeam)
		r.Post("/{id}/move", h.MoveTeam)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/{id}", h.GetTask)
		r.Patch("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
	})

	return r
}
