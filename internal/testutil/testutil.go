// Package testutil provides shared test helpers for setting up databases
// and deterministic embedding providers.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/opennote/opennote/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "opennote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// StaticProvider is an embedding provider returning canned vectors keyed by
// substring match on the input text. Unmatched or blank input yields nil,
// mirroring the real provider's absent-on-failure behavior.
type StaticProvider struct {
	Dims    int
	Vectors map[string][]float32
}

// Embed returns the first canned vector whose key occurs in text.
func (p *StaticProvider) Embed(_ context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	for key, vec := range p.Vectors {
		if strings.Contains(text, key) {
			return vec
		}
	}
	return nil
}

// Dimensions returns the provider's fixed vector length.
func (p *StaticProvider) Dimensions() int {
	if p.Dims > 0 {
		return p.Dims
	}
	return 3
}
