// Package noteservice coordinates the note store, embedding provider, and
// graph builder behind the API and bridge surfaces.
package noteservice

import (
	"context"
	"fmt"
	"sort"

	"github.com/opennote/opennote/internal/embed"
	"github.com/opennote/opennote/internal/graph"
	"github.com/opennote/opennote/internal/sse"
	"github.com/opennote/opennote/internal/store"
	"github.com/opennote/opennote/internal/vector"
)

// DefaultOwner is the single fixed owner id in local-only mode.
const DefaultOwner = "local-user"

// SearchResult is one semantic-search hit.
type SearchResult struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// NoteRef is the id+title projection used by listing surfaces.
type NoteRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Service is the orchestration layer owned by the process root. The
// embedding cache is injected rather than ambient, so every test gets
// fresh state.
type Service struct {
	db       *store.DB
	provider embed.Provider
	cache    *embed.Cache
	builder  *graph.Builder
	broker   *sse.Broker // optional; nil disables event publishing
	owner    string
}

// New creates a Service. broker may be nil.
func New(db *store.DB, provider embed.Provider, cache *embed.Cache, threshold float64, broker *sse.Broker) *Service {
	return &Service{
		db:       db,
		provider: provider,
		cache:    cache,
		builder:  graph.NewBuilder(provider, threshold),
		broker:   broker,
		owner:    DefaultOwner,
	}
}

// ListNotes returns the owner's notes sorted by last update, newest first.
func (s *Service) ListNotes(_ context.Context) ([]store.Note, error) {
	notes, err := s.db.ListAll(s.owner)
	if err != nil {
		return nil, err
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

// GetNote returns one note by id; apperr.ErrNotFound for a missing key.
func (s *Service) GetNote(_ context.Context, id int64) (*store.Note, error) {
	return s.db.Get(id)
}

// SaveNote persists a draft (insert when it has no id, partial update
// otherwise), invalidates the note's cached embedding, and notifies
// listeners.
func (s *Service) SaveNote(_ context.Context, draft store.Draft) (*store.Note, error) {
	note, err := s.db.Save(s.owner, draft)
	if err != nil {
		return nil, err
	}
	// The derived text may have changed; drop the stale vector so the next
	// graph rebuild recomputes it.
	s.cache.Delete(note.ID)
	if s.broker != nil {
		s.broker.PublishNoteSaved(note.ID)
	}
	return note, nil
}

// DeleteNote removes a note. Missing ids are a no-op, not an error.
func (s *Service) DeleteNote(_ context.Context, id int64) error {
	if err := s.db.Delete(id); err != nil {
		return err
	}
	s.cache.Delete(id)
	if s.broker != nil {
		s.broker.PublishNoteDeleted(id)
	}
	return nil
}

// BuildGraph recomputes the relationship graph for the current notes and
// filter text.
func (s *Service) BuildGraph(ctx context.Context, filter string) (graph.Graph, error) {
	notes, err := s.db.ListAll(s.owner)
	if err != nil {
		return graph.Graph{}, err
	}
	return s.builder.Build(ctx, notes, filter, s.cache), nil
}

// SemanticSearch ranks all notes by cosine similarity against the query
// and returns the top limit results, highest first. Notes without an
// obtainable embedding are skipped rather than scored against noise.
func (s *Service) SemanticSearch(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	queryVec := s.provider.Embed(ctx, query)
	if queryVec == nil {
		return nil, fmt.Errorf("noteservice: no embedding available for query")
	}

	notes, err := s.db.ListAll(s.owner)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(notes))
	for _, n := range notes {
		vec, ok := s.cache.Get(n.ID)
		if !ok {
			vec = s.provider.Embed(ctx, embed.DerivedText(n.Title, n.Content))
			if vec == nil {
				continue
			}
			s.cache.Put(n.ID, vec)
		}
		results = append(results, SearchResult{
			ID:         n.ID,
			Title:      n.Title,
			Similarity: vector.Cosine(queryVec, vec),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ListRefs returns the id+title projection of ListNotes.
func (s *Service) ListRefs(ctx context.Context) ([]NoteRef, error) {
	notes, err := s.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]NoteRef, len(notes))
	for i, n := range notes {
		refs[i] = NoteRef{ID: n.ID, Title: n.Title}
	}
	return refs, nil
}

// Store exposes the underlying store for credential management surfaces.
func (s *Service) Store() *store.DB {
	return s.db
}
