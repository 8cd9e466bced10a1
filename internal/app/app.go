// Package app keeps the in-memory store and the persisted document in step:
// local changes are saved as they happen and changes written by other
// instances are validated and swapped in.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/akyairhashvil/roadmap/internal/config"
	"github.com/akyairhashvil/roadmap/internal/exchange"
	"github.com/akyairhashvil/roadmap/internal/persistence"
	"github.com/akyairhashvil/roadmap/internal/store"
)

// App owns the store for one running instance.
type App struct {
	store  *store.Store
	svc    *persistence.Service
	logger *slog.Logger
	now    func() time.Time

	// external is set while a document from another writer is being
	// applied so the resulting change is not written straight back.
	external    atomic.Bool
	unsubscribe func()
}

type Option func(*App)

// WithClock sets the time source used for export dates.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// New loads the persisted document into st, falling back to a default
// timeline and team when nothing usable is stored, and starts autosaving.
// The defaults are saved only when nothing was stored at all.
func New(ctx context.Context, st *store.Store, svc *persistence.Service, logger *slog.Logger, opts ...Option) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		store:  st,
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	restored := a.restore(ctx)
	a.unsubscribe = st.Subscribe(a.autosave)
	if !restored && a.svc.LastRevision() == 0 {
		a.Save(ctx)
	}
	return a
}

// Store returns the managed store.
func (a *App) Store() *store.Store { return a.store }

// Close stops autosaving.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Save writes the current state. It reports whether the write succeeded.
func (a *App) Save(ctx context.Context) bool {
	return a.svc.Save(ctx, exchange.Export(a.store.Snapshot(), a.now()))
}

// ApplyExternal validates raw and replaces the state with it. An invalid
// document leaves the state untouched.
func (a *App) ApplyExternal(raw any) error {
	a.external.Store(true)
	defer a.external.Store(false)
	snap, err := exchange.ImportStored(a.store, raw)
	if err != nil {
		return fmt.Errorf("apply external roadmap: %w", err)
	}
	timelines, teams, tasks := snap.Counts()
	a.logger.Info("external roadmap applied", "timelines", timelines, "teams", teams, "tasks", tasks)
	return nil
}

// Run watches for documents written by other instances until ctx is done.
func (a *App) Run(ctx context.Context, interval time.Duration) {
	a.svc.Watch(ctx, interval, func(raw any) {
		if err := a.ApplyExternal(raw); err != nil {
			a.logger.Warn("ignoring invalid external roadmap", "error", err)
		}
	})
}

func (a *App) restore(ctx context.Context) bool {
	raw, ok := a.svc.Load(ctx)
	if ok {
		doc, err := exchange.ParseStoredDocument(raw)
		if err == nil {
			var snap store.Snapshot
			snap, err = exchange.BuildState(doc, nil)
			if err == nil {
				a.store.Reset(snap)
				return true
			}
		}
		a.logger.Warn("stored roadmap rejected, starting from defaults", "error", err)
	}
	a.store.Reset(DefaultSnapshot())
	return false
}

func (a *App) autosave(change store.Change) {
	if _, ok := change.Command.(store.ReplaceState); ok && a.external.Load() {
		return
	}
	a.svc.Save(context.Background(), exchange.Export(change.After, a.now()))
}

// DefaultSnapshot is the state of a brand new roadmap: one timeline and
// one team.
func DefaultSnapshot() store.Snapshot {
	snap, err := store.Empty().Apply(store.CreateTimeline{Name: config.DefaultTimelineName})
	if err == nil {
		snap, err = snap.Apply(store.CreateTeam{Name: config.DefaultTeamName})
	}
	if err != nil {
		panic(fmt.Sprintf("default roadmap: %v", err))
	}
	return snap
}
