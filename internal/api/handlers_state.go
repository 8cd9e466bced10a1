package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/exchange"
	"github.com/akyairhashvil/roadmap/internal/lanes"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/store"
)

// PassphraseHeader carries the passphrase for sealed imports.
const PassphraseHeader = "X-Roadmap-Passphrase"

type Handler struct {
	store *store.Store
	now   func() time.Time
}

type taskView struct {
	models.Task
	TimelineID string `json:"timelineId"`
}

type stateResponse struct {
	ActiveTimelineID string            `json:"activeTimelineId"`
	Timelines        []models.Timeline `json:"timelines"`
	Teams            []models.Team     `json:"teams"`
	Tasks            []taskView        `json:"tasks"`
	CanUndo          bool              `json:"canUndo"`
	CanRedo          bool              `json:"canRedo"`
}

type placementView struct {
	Task models.Task `json:"task"`
	Lane int         `json:"lane"`
}

type rowView struct {
	Team       models.Team     `json:"team"`
	Lanes      int             `json:"lanes"`
	Placements []placementView `json:"placements"`
}

type layoutResponse struct {
	Timeline models.Timeline    `json:"timeline"`
	Quarters []calendar.Quarter `json:"quarters"`
	Rows     []rowView          `json:"rows"`
}

type historyResponse struct {
	Changed bool `json:"changed"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

func viewTask(snap store.Snapshot, task models.Task) taskView {
	timelineID, _ := snap.TimelineOf(task.ID)
	return taskView{Task: task, TimelineID: timelineID}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	timelines, teams, tasks := h.store.Snapshot().Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timelines": timelines,
		"teams":     teams,
		"tasks":     tasks,
	})
}

// State handles GET /state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	resp := stateResponse{
		ActiveTimelineID: snap.ActiveTimelineID(),
		Timelines:        snap.Timelines(),
		Teams:            snap.Teams(),
		Tasks:            []taskView{},
		CanUndo:          h.store.CanUndo(),
		CanRedo:          h.store.CanRedo(),
	}
	for _, task := range snap.Tasks() {
		resp.Tasks = append(resp.Tasks, viewTask(snap, task))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Layout handles GET /layout?timeline={id}
func (h *Handler) Layout(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	timelineID := r.URL.Query().Get("timeline")
	if timelineID == "" {
		timelineID = snap.ActiveTimelineID()
	}
	board, ok := lanes.LayoutTimeline(snap, timelineID)
	if !ok {
		writeCommandError(w, apperr.NotFound("timeline", timelineID))
		return
	}

	resp := layoutResponse{
		Timeline: board.Timeline,
		Quarters: board.Quarters(),
		Rows:     make([]rowView, 0, len(board.Rows)),
	}
	for _, row := range board.Rows {
		rv := rowView{Team: row.Team, Lanes: row.Lanes, Placements: make([]placementView, 0, len(row.Placements))}
		for _, p := range row.Placements {
			rv.Placements = append(rv.Placements, placementView{Task: p.Task, Lane: p.Lane})
		}
		resp.Rows = append(resp.Rows, rv)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Export handles GET /export?format=json|yaml
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := exchange.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeCommandError(w, err)
		return
	}
	body, err := exchange.Encode(exchange.Export(h.store.Snapshot(), h.now()), format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Import handles POST /import. The whole document is validated before the
// state is replaced.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	format, err := importFormat(r)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	snap, err := exchange.ImportBytes(h.store, body, format, exchange.WithPassphrase(r.Header.Get(PassphraseHeader)))
	if errors.Is(err, exchange.ErrPassphraseRequired) || errors.Is(err, exchange.ErrWrongPassphrase) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeCommandError(w, err)
		return
	}
	timelines, teams, tasks := snap.Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"timelines": timelines,
		"teams":     teams,
		"tasks":     tasks,
	})
}

// Undo handles POST /undo
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	_, changed := h.store.Undo()
	h.writeHistory(w, changed)
}

// Redo handles POST /redo
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	_, changed := h.store.Redo()
	h.writeHistory(w, changed)
}

func (h *Handler) writeHistory(w http.ResponseWriter, changed bool) {
	writeJSON(w, http.StatusOK, historyResponse{
		Changed: changed,
		CanUndo: h.store.CanUndo(),
		CanRedo: h.store.CanRedo(),
	})
}

func importFormat(r *http.Request) (exchange.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return exchange.ParseFormat(f)
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return exchange.FormatYAML, nil
	}
	return exchange.FormatJSON, nil
}

func contentType(format exchange.Format) string {
	if format == exchange.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}
