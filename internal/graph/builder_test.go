package graph

import (
	"context"
	"testing"

	"github.com/opennote/opennote/internal/embed"
	"github.com/opennote/opennote/internal/store"
)

// nullProvider never produces a vector; builds relying on cached
// embeddings use it to keep tests deterministic.
type nullProvider struct{}

func (nullProvider) Embed(context.Context, string) []float32 { return nil }
func (nullProvider) Dimensions() int                         { return 3 }

// countingProvider returns a fixed vector and counts invocations.
type countingProvider struct {
	vec   []float32
	calls int
}

func (p *countingProvider) Embed(context.Context, string) []float32 {
	p.calls++
	return p.vec
}
func (p *countingProvider) Dimensions() int { return len(p.vec) }

func note(id int64, title, content string, links ...int64) store.Note {
	return store.Note{ID: id, Title: title, Content: content, Links: links}
}

func TestBuildScenarioExplicitSuppressesSemantic(t *testing.T) {
	// Notes A{1, links:[2]}, B{2}, C{3}; similarities 0.9 (A,B),
	// 0.5 (A,C), 0.2 (B,C). Expected: only the explicit 1-2 edge.
	cache := embed.NewCache()
	cache.Put(1, []float32{1, 0, 0})
	cache.Put(2, []float32{0.9, 0.43589, 0})            // cos(A,B) ≈ 0.9
	cache.Put(3, []float32{0.5, -0.64031, 0.58258})     // cos(A,C) = 0.5, cos(B,C) ≈ 0.2

	b := NewBuilder(nullProvider{}, 0.75)
	g := b.Build(context.Background(), []store.Note{
		note(1, "A", "alpha", 2),
		note(2, "B", "beta"),
		note(3, "C", "gamma"),
	}, "", cache)

	if len(g.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("edges = %+v, want exactly one", g.Edges)
	}
	e := g.Edges[0]
	if e.Source != 1 || e.Target != 2 {
		t.Errorf("edge pair = %d-%d, want 1-2", e.Source, e.Target)
	}
	if !e.Explicit {
		t.Error("explicit provenance must win over the 0.9 similarity")
	}
	if e.Weight != 1.0 {
		t.Errorf("explicit edge weight = %v, want 1.0", e.Weight)
	}
}

func TestBuildSemanticEdgeAboveThreshold(t *testing.T) {
	cache := embed.NewCache()
	cache.Put(1, []float32{1, 0})
	cache.Put(2, []float32{0.99, 0.14107}) // cos ≈ 0.99

	b := NewBuilder(nullProvider{}, 0.75)
	g := b.Build(context.Background(), []store.Note{
		note(1, "left", ""),
		note(2, "right", ""),
	}, "", cache)

	if len(g.Edges) != 1 {
		t.Fatalf("edges = %+v, want one semantic edge", g.Edges)
	}
	e := g.Edges[0]
	if e.Explicit {
		t.Error("edge should be semantic")
	}
	if e.Weight <= 0.75 {
		t.Errorf("semantic weight = %v, must exceed threshold", e.Weight)
	}
}

func TestBuildThresholdIsStrict(t *testing.T) {
	// Identical direction gives cosine 1; use a custom threshold of
	// exactly 1 so similarity == threshold emits nothing.
	cache := embed.NewCache()
	cache.Put(1, []float32{1, 0})
	cache.Put(2, []float32{1, 0})

	b := NewBuilder(nullProvider{}, 1.0)
	g := b.Build(context.Background(), []store.Note{
		note(1, "x", ""), note(2, "y", ""),
	}, "", cache)

	if len(g.Edges) != 0 {
		t.Errorf("similarity equal to threshold must not produce an edge: %+v", g.Edges)
	}
}

func TestBuildNoSelfEdges(t *testing.T) {
	cache := embed.NewCache()
	cache.Put(1, []float32{1, 0})

	b := NewBuilder(nullProvider{}, 0.75)
	g := b.Build(context.Background(), []store.Note{
		note(1, "self", "", 1), // explicit link to itself
	}, "", cache)

	if len(g.Edges) != 0 {
		t.Errorf("self link produced an edge: %+v", g.Edges)
	}
}

func TestBuildMirroredExplicitLinksDeduplicated(t *testing.T) {
	cache := embed.NewCache()

	b := NewBuilder(nullProvider{}, 0.75)
	g := b.Build(context.Background(), []store.Note{
		note(1, "a", "", 2),
		note(2, "b", "", 1), // mirrored declaration
	}, "", cache)

	if len(g.Edges) != 1 {
		t.Errorf("mirrored links produced %d edges, want 1", len(g.Edges))
	}
}

func TestBuildExplicitLinkToFilteredOutNoteDropped(t *testing.T) {
	b := NewBuilder(nullProvider{}, 0.75)
	g := b.Build(context.Background(), []store.Note{
		note(1, "apple pie", "sweet", 2),
		note(2, "spreadsheet", "numbers"),
	}, "apple", embed.NewCache())

	if len(g.Nodes) != 1 {
		t.Fatalf("nodes = %+v, want only the apple note", g.Nodes)
	}
	if len(g.Edges) != 0 {
		t.Errorf("edge to filtered-out target survived: %+v", g.Edges)
	}
}

func TestBuildFilterMatchesTitleOrContent(t *testing.T) {
	b := NewBuilder(nullProvider{}, 0.75)
	notes := []store.Note{
		note(1, "Groceries", "buy milk"),
		note(2, "Work", "quarterly milk report"),
		note(3, "Misc", "nothing here"),
	}

	g := b.Build(context.Background(), notes, "MILK", embed.NewCache())
	if len(g.Nodes) != 2 {
		t.Fatalf("case-insensitive filter matched %d nodes, want 2", len(g.Nodes))
	}

	// Highlight only when the title itself matches.
	for _, n := range g.Nodes {
		if n.ID == 1 && n.Highlighted {
			t.Error("node 1 matched on content only; should not be highlighted")
		}
	}

	g = b.Build(context.Background(), notes, "work", embed.NewCache())
	if len(g.Nodes) != 1 || !g.Nodes[0].Highlighted {
		t.Errorf("title match should highlight: %+v", g.Nodes)
	}
}

func TestBuildEmptyFilterNoHighlight(t *testing.T) {
	b := NewBuilder(nullProvider{}, 0.75)
	g := b.Build(context.Background(), []store.Note{note(1, "Anything", "")}, "", embed.NewCache())
	if g.Nodes[0].Highlighted {
		t.Error("empty filter must not highlight nodes")
	}
}

func TestBuildUntitledLabel(t *testing.T) {
	b := NewBuilder(nullProvider{}, 0.75)
	g := b.Build(context.Background(), []store.Note{note(1, "", "body")}, "", embed.NewCache())
	if g.Nodes[0].Label != UntitledLabel {
		t.Errorf("label = %q, want %q", g.Nodes[0].Label, UntitledLabel)
	}
}

func TestBuildReusesCachedEmbeddings(t *testing.T) {
	cache := embed.NewCache()
	cache.Put(1, []float32{1, 0})

	p := &countingProvider{vec: []float32{0, 1}}
	b := NewBuilder(p, 0.75)
	g := b.Build(context.Background(), []store.Note{
		note(1, "cached", "x"),
		note(2, "fresh", "y"),
	}, "", cache)

	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (only the uncached note)", p.calls)
	}
	if _, ok := cache.Get(2); !ok {
		t.Error("computed embedding was not merged back into the cache")
	}
	_ = g
}

func TestBuildSkipsPairsWithoutEmbeddings(t *testing.T) {
	// Provider yields nothing; no cached vectors: nodes appear, but no
	// semantic edges are invented.
	b := NewBuilder(nullProvider{}, 0.75)
	g := b.Build(context.Background(), []store.Note{
		note(1, "a", "x"), note(2, "b", "y"),
	}, "", embed.NewCache())

	if len(g.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(g.Nodes))
	}
	if len(g.Edges) != 0 {
		t.Errorf("edges without embeddings: %+v", g.Edges)
	}
}

func TestBuildDeterministic(t *testing.T) {
	cache := embed.NewCache()
	cache.Put(1, []float32{1, 0})
	cache.Put(2, []float32{0.99, 0.14107})
	cache.Put(3, []float32{0.98, 0.19899})

	notes := []store.Note{
		note(1, "one", "", 3),
		note(2, "two", ""),
		note(3, "three", ""),
	}

	b := NewBuilder(nullProvider{}, 0.75)
	first := b.Build(context.Background(), notes, "", cache)
	second := b.Build(context.Background(), notes, "", cache)

	if len(first.Edges) != len(second.Edges) {
		t.Fatalf("edge counts differ: %d vs %d", len(first.Edges), len(second.Edges))
	}
	for i := range first.Edges {
		if first.Edges[i] != second.Edges[i] {
			t.Errorf("edge %d differs: %+v vs %+v", i, first.Edges[i], second.Edges[i])
		}
	}
}
