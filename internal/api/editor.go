package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/opennote/opennote/internal/apperr"
	"github.com/opennote/opennote/internal/autosave"
)

// EditorHandler exposes the single active editing session. The app edits one
// note at a time, so one scheduler serves the whole surface: opening a note
// resets the draft, edits coalesce through the debounce window, and a flush
// persists immediately.
type EditorHandler struct {
	h     *Handler
	sched *autosave.Scheduler
}

// NewEditorHandler wires the scheduler behind the editor endpoints.
func NewEditorHandler(h *Handler, sched *autosave.Scheduler) *EditorHandler {
	return &EditorHandler{h: h, sched: sched}
}

// OpenEditorRequest selects the note to edit. A nil id starts a new note.
type OpenEditorRequest struct {
	ID *int64 `json:"id"`
}

// EditRequest carries the latest draft text. Immediate bypasses the debounce
// window, used for large-payload edits.
type EditRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Immediate bool   `json:"immediate"`
}

// EditorStateResponse reports whether a save is in flight.
type EditorStateResponse struct {
	Saving bool `json:"saving"`
}

// Open handles PUT /editor: switch the session to a note (or a new draft).
// Any pending debounced save for the previous note is dropped, never written
// against the new identity.
func (e *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenEditorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	if req.ID == nil {
		e.sched.Reset(nil)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	note, err := e.h.svc.GetNote(r.Context(), *req.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("open editor failed", slog.Int64("id", *req.ID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	e.sched.Reset(note)
	writeJSON(w, http.StatusOK, note)
}

// Edit handles PATCH /editor: record the latest draft and schedule (or force)
// a save.
func (e *EditorHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	e.sched.Update(req.Title, req.Content)
	if req.Immediate {
		if err := e.sched.SaveNow(r.Context()); err != nil {
			slog.Error("immediate save failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("save failed"))
			return
		}
	} else {
		e.sched.ScheduleSave()
	}
	writeJSON(w, http.StatusAccepted, EditorStateResponse{Saving: e.sched.Saving()})
}

// Flush handles POST /editor/save: persist the current draft immediately,
// used on loss of focus.
func (e *EditorHandler) Flush(w http.ResponseWriter, r *http.Request) {
	if err := e.sched.SaveNow(r.Context()); err != nil {
		slog.Error("flush save failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("save failed"))
		return
	}
	writeJSON(w, http.StatusOK, EditorStateResponse{Saving: e.sched.Saving()})
}

// State handles GET /editor: the saving indicator.
func (e *EditorHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, EditorStateResponse{Saving: e.sched.Saving()})
}
