package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opennote/opennote/internal/autosave"
	"github.com/opennote/opennote/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether requests must present a generated API key.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// sched, if non-nil, enables the /editor session endpoints.
func NewRouter(svc *noteservice.Service, authEnabled bool, sseHandler http.Handler, sched *autosave.Scheduler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(APIKeyMiddleware(authEnabled, svc.Store()))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.SaveNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Relationship graph.
	r.Get("/graph", h.Graph)

	// Semantic search.
	r.Get("/search/semantic", h.SemanticSearch)

	// Editing session with debounced autosave.
	if sched != nil {
		e := NewEditorHandler(h, sched)
		r.Get("/editor", e.State)
		r.Put("/editor", e.Open)
		r.Patch("/editor", e.Edit)
		r.Post("/editor/save", e.Flush)
	}

	// UI preferences.
	r.Get("/settings/{key}", h.GetSetting)
	r.Put("/settings/{key}", h.PutSetting)

	// Bridge credentials.
	r.Get("/keys", h.ListKeys)
	r.Post("/keys", h.CreateKey)
	r.Delete("/keys/{id}", h.DeleteKey)

	// SSE endpoint (protected by the same middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
