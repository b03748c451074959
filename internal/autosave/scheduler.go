// Package autosave coalesces bursts of edits into a single persisted write.
//
// The scheduler owns the authoritative in-memory draft for the note being
// edited. Edits mutate that state synchronously; the debounce timer reads
// it at fire time, so a save always persists the latest draft rather than
// a snapshot captured when the timer was armed.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opennote/opennote/internal/store"
)

// DefaultInterval is the quiet period after the last edit before a
// debounced save fires.
const DefaultInterval = time.Second

// SaveFunc persists a draft. It is the note store's save path.
type SaveFunc func(ctx context.Context, draft store.Draft) (*store.Note, error)

// Scheduler debounces saves for a single active note at a time.
type Scheduler struct {
	interval time.Duration
	save     SaveFunc
	onError  func(error)
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64 // bumped on Reset/Close; stale timers check it before saving
	noteID  *int64
	title   string
	content string
	closed  bool

	saving atomic.Bool
}

// New creates a Scheduler. onError receives asynchronous save failures
// (the "save failed" notification hook); it may be nil.
func New(interval time.Duration, save SaveFunc, onError func(error), logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{interval: interval, save: save, onError: onError, logger: logger}
}

// Reset switches the active note. Any pending debounced save is cancelled
// without firing, so a stale draft is never written against the new note's
// identity. A nil note clears the draft entirely.
func (s *Scheduler) Reset(note *store.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	if note == nil {
		s.noteID = nil
		s.title, s.content = "", ""
		return
	}
	id := note.ID
	s.noteID = &id
	s.title = note.Title
	s.content = note.Content
}

// Update records the latest draft state. It never triggers a save by
// itself; pair it with ScheduleSave or SaveNow.
func (s *Scheduler) Update(title, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
	s.content = content
}

// ScheduleSave (re)starts the quiet-period timer. Repeated calls within the
// interval discard the previous timer, so only the last call in a burst
// results in a write.
func (s *Scheduler) ScheduleSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.interval, func() {
		s.fire(gen)
	})
}

// SaveNow bypasses the timer and persists the current draft immediately.
// Used for large-payload edits and on loss of focus.
func (s *Scheduler) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.cancelLocked()
	gen := s.gen
	draft := s.draftLocked()
	s.mu.Unlock()

	return s.persist(ctx, draft, gen)
}

// Saving reports whether a save is currently in flight.
func (s *Scheduler) Saving() bool {
	return s.saving.Load()
}

// Close tears the scheduler down, cancelling any pending timer without
// triggering a save.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.closed = true
}

// cancelLocked stops the pending timer and invalidates in-flight
// generations. Callers hold s.mu.
func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// draftLocked assembles the draft from current state. Callers hold s.mu.
func (s *Scheduler) draftLocked() store.Draft {
	title, content := s.title, s.content
	d := store.Draft{Title: &title, Content: &content}
	if s.noteID != nil {
		id := *s.noteID
		d.ID = &id
	}
	return d
}

// fire runs when the debounce timer expires. A generation mismatch means
// the scheduler was reset or closed after this timer was armed; the stale
// draft must not be written.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	draft := s.draftLocked()
	s.mu.Unlock()

	if err := s.persist(context.Background(), draft, gen); err != nil {
		s.logger.Warn("autosave failed", slog.String("error", err.Error()))
		if s.onError != nil {
			s.onError(err)
		}
	}
}

func (s *Scheduler) persist(ctx context.Context, draft store.Draft, gen uint64) error {
	s.saving.Store(true)
	defer s.saving.Store(false)

	saved, err := s.save(ctx, draft)
	if err != nil {
		return err
	}

	// First save of a brand-new note assigns its identity; adopt it so
	// subsequent saves update instead of inserting duplicates. A generation
	// change means the session was reset while this save was in flight, and
	// the id belongs to the previous note, not the current draft.
	s.mu.Lock()
	if gen == s.gen && s.noteID == nil && saved != nil {
		id := saved.ID
		s.noteID = &id
	}
	s.mu.Unlock()
	return nil
}
