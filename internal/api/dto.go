package api

import (
	"github.com/opennote/opennote/internal/graph"
	"github.com/opennote/opennote/internal/noteservice"
	"github.com/opennote/opennote/internal/store"
)

// SaveNoteRequest is the request body for creating or updating a note.
// All fields are optional; omitted fields are left untouched on update.
// An omitted id always creates a new note.
type SaveNoteRequest = store.Draft

// CreateKeyRequest is the request body for generating an API key.
type CreateKeyRequest struct {
	Name string `json:"name"`
}

// NoteListResponse wraps a note listing.
type NoteListResponse struct {
	Notes []store.Note `json:"notes"`
	Total int          `json:"total"`
}

// GraphResponse wraps a relationship graph rebuild.
type GraphResponse struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// SearchResponse wraps semantic-search results.
type SearchResponse struct {
	Results []noteservice.SearchResult `json:"results"`
}

// KeyListResponse wraps an API key listing.
type KeyListResponse struct {
	Keys []store.APIKey `json:"keys"`
}

// SettingResponse is one settings key-value pair.
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PutSettingRequest is the request body for writing a settings value.
type PutSettingRequest struct {
	Value string `json:"value"`
}
