package embed

import (
	"strconv"

	gocache "github.com/patrickmn/go-cache"
)

// Cache holds computed note embeddings for the lifetime of the process,
// keyed by note identifier. It is constructed at the process root and
// injected into the components that need it, so tests get fresh state.
//
// Writes are idempotent last-write-wins per key: the value for a note id is
// a pure function of that note's derived text at computation time.
type Cache struct {
	c *gocache.Cache
}

// NewCache returns an empty embedding cache. Entries never expire; they are
// invalidated only by process restart or explicit delete.
func NewCache() *Cache {
	return &Cache{c: gocache.New(gocache.NoExpiration, 0)}
}

// Get returns the cached vector for a note id.
func (e *Cache) Get(id int64) ([]float32, bool) {
	v, ok := e.c.Get(strconv.FormatInt(id, 10))
	if !ok {
		return nil, false
	}
	vec, ok := v.([]float32)
	return vec, ok
}

// Put stores the vector for a note id, replacing any previous value.
func (e *Cache) Put(id int64, vec []float32) {
	if vec == nil {
		return
	}
	e.c.Set(strconv.FormatInt(id, 10), vec, gocache.NoExpiration)
}

// Delete drops the cached vector for a note id.
func (e *Cache) Delete(id int64) {
	e.c.Delete(strconv.FormatInt(id, 10))
}

// Len returns the number of cached vectors.
func (e *Cache) Len() int {
	return e.c.ItemCount()
}
