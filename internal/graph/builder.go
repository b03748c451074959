// Package graph derives the note relationship graph: explicit author-declared
// links plus semantic links inferred from embedding similarity.
package graph

import (
	"context"
	"strings"

	"github.com/opennote/opennote/internal/embed"
	"github.com/opennote/opennote/internal/store"
	"github.com/opennote/opennote/internal/vector"
)

// DefaultThreshold is the minimum cosine similarity for a semantic edge.
const DefaultThreshold = 0.75

// UntitledLabel is the display label for notes without a title.
const UntitledLabel = "Untitled"

// Node is one visible note in the graph.
type Node struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	Highlighted bool   `json:"highlighted"`
}

// Edge is an unordered pair of notes with a weight and a provenance flag.
// Explicit edges are author-declared links (weight 1.0); semantic edges
// carry the similarity score that produced them.
type Edge struct {
	Source   int64   `json:"source"`
	Target   int64   `json:"target"`
	Weight   float64 `json:"weight"`
	Explicit bool    `json:"explicit"`
}

// Graph is the rebuild result. It is recomputed from scratch on every
// request and never persisted.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// pairKey is the canonical unordered pair (min id, max id). Using a struct
// key avoids the collisions of concatenated string keys.
type pairKey struct {
	lo, hi int64
}

func makePair(a, b int64) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// Builder computes relationship graphs against an injected embedding cache.
type Builder struct {
	provider  embed.Provider
	threshold float64
}

// NewBuilder creates a Builder. A non-positive threshold falls back to the
// default.
func NewBuilder(provider embed.Provider, threshold float64) *Builder {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Builder{provider: provider, threshold: threshold}
}

// Build derives the graph for the given notes and filter text.
//
// Notes whose title or content contains the filter (case-insensitive)
// become the node set; an empty filter selects all notes. Missing
// embeddings are computed through the provider and merged into cache;
// an embedding already cached for a note id is never recomputed within
// one build. Pairs lacking a real embedding on either side produce no
// semantic edge.
func (b *Builder) Build(ctx context.Context, notes []store.Note, filter string, cache *embed.Cache) Graph {
	needle := strings.ToLower(filter)

	var visible []store.Note
	for _, n := range notes {
		if needle == "" ||
			strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Content), needle) {
			visible = append(visible, n)
		}
	}

	g := Graph{Nodes: make([]Node, 0, len(visible)), Edges: []Edge{}}
	alive := make(map[int64]struct{}, len(visible))

	for _, n := range visible {
		alive[n.ID] = struct{}{}

		if _, ok := cache.Get(n.ID); !ok {
			if vec := b.provider.Embed(ctx, embed.DerivedText(n.Title, n.Content)); vec != nil {
				cache.Put(n.ID, vec)
			}
		}

		label := n.Title
		if label == "" {
			label = UntitledLabel
		}
		g.Nodes = append(g.Nodes, Node{
			ID:          n.ID,
			Label:       label,
			Highlighted: needle != "" && strings.Contains(strings.ToLower(n.Title), needle),
		})
	}

	seen := make(map[pairKey]struct{})

	// Explicit edges first: author-declared provenance suppresses any
	// semantic edge for the same pair.
	for _, n := range visible {
		for _, target := range n.Links {
			if target == n.ID {
				continue
			}
			if _, ok := alive[target]; !ok {
				continue
			}
			key := makePair(n.ID, target)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			g.Edges = append(g.Edges, Edge{Source: n.ID, Target: target, Weight: 1.0, Explicit: true})
		}
	}

	// Semantic edges: each unordered pair considered exactly once.
	for i := 0; i < len(visible); i++ {
		for j := i + 1; j < len(visible); j++ {
			key := makePair(visible[i].ID, visible[j].ID)
			if _, dup := seen[key]; dup {
				continue
			}
			vecA, okA := cache.Get(visible[i].ID)
			vecB, okB := cache.Get(visible[j].ID)
			if !okA || !okB {
				continue
			}
			sim := vector.Cosine(vecA, vecB)
			if sim > b.threshold {
				seen[key] = struct{}{}
				g.Edges = append(g.Edges, Edge{
					Source: visible[i].ID, Target: visible[j].ID,
					Weight: sim, Explicit: false,
				})
			}
		}
	}

	return g
}
