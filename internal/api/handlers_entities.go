package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/store"
	"github.com/akyairhashvil/roadmap/internal/util"
)

type nameRequest struct {
	Name string `json:"name"`
}

type moveRequest struct {
	Position int `json:"position"`
}

type createTaskRequest struct {
	TimelineID string           `json:"timelineId"`
	TeamID     string           `json:"teamId"`
	Name       string           `json:"name"`
	Progress   int              `json:"progress"`
	Start      calendar.Quarter `json:"startQuarter"`
	End        calendar.Quarter `json:"endQuarter"`
	Color      models.Color     `json:"color"`
}

type updateTaskRequest struct {
	TimelineID *string           `json:"timelineId"`
	TeamID     *string           `json:"teamId"`
	Name       *string           `json:"name"`
	Progress   *int              `json:"progress"`
	Start      *calendar.Quarter `json:"startQuarter"`
	End        *calendar.Quarter `json:"endQuarter"`
	Color      *models.Color     `json:"color"`
}

func (req updateTaskRequest) patch() store.TaskPatch {
	return store.TaskPatch{
		TimelineID: req.TimelineID,
		TeamID:     req.TeamID,
		Name:       req.Name,
		Progress:   req.Progress,
		Start:      req.Start,
		End:        req.End,
		Color:      req.Color,
	}
}

func decodeOrFail(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(r, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// CreateTimeline handles POST /timelines
func (h *Handler) CreateTimeline(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	tl, err := h.store.CreateTimeline(req.Name)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tl)
}

// RenameTimeline handles PATCH /timelines/{id}
func (h *Handler) RenameTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req nameRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	if err := h.store.RenameTimeline(id, req.Name); err != nil {
		writeCommandError(w, err)
		return
	}
	tl, _ := h.store.Snapshot().Timeline(id)
	writeJSON(w, http.StatusOK, tl)
}

// DeleteTimeline handles DELETE /timelines/{id}
func (h *Handler) DeleteTimeline(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTimeline(chi.URLParam(r, "id")); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateTimeline handles POST /timelines/{id}/activate
func (h *Handler) ActivateTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.SetActiveTimeline(id); err != nil {
		writeCommandError(w, err)
		return
	}
	tl, _ := h.store.Snapshot().Timeline(id)
	writeJSON(w, http.StatusOK, tl)
}

// MoveTimeline handles POST /timelines/{id}/move
func (h *Handler) MoveTimeline(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	snap, err := h.store.Dispatch(store.MoveTimeline{ID: chi.URLParam(r, "id"), Position: req.Position})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Timelines())
}

// CreateTeam handles POST /teams
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	team, err := h.store.CreateTeam(req.Name)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// RenameTeam handles PATCH /teams/{id}
func (h *Handler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req nameRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	if err := h.store.RenameTeam(id, req.Name); err != nil {
		writeCommandError(w, err)
		return
	}
	team, _ := h.store.Snapshot().Team(id)
	writeJSON(w, http.StatusOK, team)
}

// DeleteTeam handles DELETE /teams/{id}
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTeam(chi.URLParam(r, "id")); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveTeam handles POST /teams/{id}/move
func (h *Handler) MoveTeam(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	snap, err := h.store.Dispatch(store.MoveTeam{ID: chi.URLParam(r, "id"), Position: req.Position})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Teams())
}

// ListTasks handles GET /tasks?q=team:platform color:indigo launch
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	query := util.ParseSearchQuery(r.URL.Query().Get("q"))
	out := []taskView{}
	for _, task := range snap.Tasks() {
		view := viewTask(snap, task)
		team, _ := snap.Team(task.TeamID)
		tl, _ := snap.Timeline(view.TimelineID)
		if query.Matches(team.Name, tl.Name, string(task.Color), task.Name) {
			out = append(out, view)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateTask handles POST /tasks. An empty timelineId means the active
// timeline.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	if req.TimelineID == "" {
		req.TimelineID = h.store.Snapshot().ActiveTimelineID()
	}
	task, err := h.store.CreateTask(req.TimelineID, req.TeamID, req.Name, req.Progress, req.Start, req.End, req.Color)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewTask(h.store.Snapshot(), task))
}

// GetTask handles GET /tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap := h.store.Snapshot()
	task, ok := snap.Task(id)
	if !ok {
		writeCommandError(w, apperr.NotFound("task", id))
		return
	}
	writeJSON(w, http.StatusOK, viewTask(snap, task))
}

// UpdateTask handles PATCH /tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	task, err := h.store.UpdateTask(chi.URLParam(r, "id"), req.patch())
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTask(h.store.Snapshot(), task))
}

// DeleteTask handles DELETE /tasks/{id}. Deleting an unknown task is not
// an error.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteTask(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
