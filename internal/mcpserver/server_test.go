package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opennote/opennote/internal/embed"
	"github.com/opennote/opennote/internal/noteservice"
	"github.com/opennote/opennote/internal/store"
	"github.com/opennote/opennote/internal/testutil"
)

func testServer(t *testing.T, provider embed.Provider) *Server {
	t.Helper()
	if provider == nil {
		provider = &testutil.StaticProvider{}
	}
	svc := noteservice.New(testutil.TestDB(t), provider, embed.NewCache(), 0.75, nil)
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper; invoke the handler
	// functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_note":
		result, err = srv.getNote(ctx, req)
	case "save_note":
		result, err = srv.saveNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "semantic_search":
		result, err = srv.semanticSearch(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSaveAndGetNote(t *testing.T) {
	srv := testServer(t, nil)

	r := callTool(t, srv, "save_note", map[string]interface{}{
		"title":   "From MCP",
		"content": "<p>agent written</p>",
	})
	if r.IsError {
		t.Fatalf("save failed: %s", resultText(r))
	}
	var saved store.Note
	if err := json.Unmarshal([]byte(resultText(r)), &saved); err != nil {
		t.Fatalf("save result not JSON: %v", err)
	}
	if saved.ID == 0 || saved.Title != "From MCP" {
		t.Fatalf("saved = %+v", saved)
	}

	r = callTool(t, srv, "get_note", map[string]interface{}{
		"id": fmt.Sprintf("%d", saved.ID),
	})
	var got store.Note
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Content != "<p>agent written</p>" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestSaveNoteUpdatesExisting(t *testing.T) {
	srv := testServer(t, nil)

	var created store.Note
	r := callTool(t, srv, "save_note", map[string]interface{}{
		"title": "v1", "content": "c",
	})
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatal(err)
	}

	r = callTool(t, srv, "save_note", map[string]interface{}{
		"id": fmt.Sprintf("%d", created.ID), "title": "v2", "content": "c2",
	})
	var updated store.Note
	if err := json.Unmarshal([]byte(resultText(r)), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.ID != created.ID || updated.Title != "v2" {
		t.Errorf("updated = %+v", updated)
	}

	r = callTool(t, srv, "list_notes", map[string]interface{}{})
	var refs []noteservice.NoteRef
	if err := json.Unmarshal([]byte(resultText(r)), &refs); err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 {
		t.Errorf("update created a duplicate: %+v", refs)
	}
}

func TestSaveNoteMissingTitle(t *testing.T) {
	srv := testServer(t, nil)
	r := callTool(t, srv, "save_note", map[string]interface{}{"content": "no title"})
	if !r.IsError {
		t.Error("expected error for missing required title")
	}
}

func TestGetNoteMissing(t *testing.T) {
	srv := testServer(t, nil)
	r := callTool(t, srv, "get_note", map[string]interface{}{"id": "404"})
	if r.IsError {
		t.Fatal("missing note should be reported in-band, not as a tool error")
	}
	if text := resultText(r); !strings.Contains(text, "Note not found") {
		t.Errorf("result = %q", text)
	}
}

func TestGetNoteInvalidID(t *testing.T) {
	srv := testServer(t, nil)
	r := callTool(t, srv, "get_note", map[string]interface{}{"id": "abc"})
	if !r.IsError {
		t.Error("expected error for non-numeric id")
	}
}

func TestDeleteNote(t *testing.T) {
	srv := testServer(t, nil)

	var created store.Note
	r := callTool(t, srv, "save_note", map[string]interface{}{"title": "x", "content": "y"})
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatal(err)
	}

	id := fmt.Sprintf("%d", created.ID)
	r = callTool(t, srv, "delete_note", map[string]interface{}{"id": id})
	if resultText(r) != `{"success":true}` {
		t.Errorf("delete result = %q", resultText(r))
	}

	// Deleting again still succeeds.
	r = callTool(t, srv, "delete_note", map[string]interface{}{"id": id})
	if r.IsError {
		t.Error("repeat delete should not error")
	}
}

func TestSemanticSearch(t *testing.T) {
	p := &testutil.StaticProvider{Vectors: map[string][]float32{
		"question": {1, 0, 0},
		"near":     {0.9, 0.43589, 0},
		"far":      {0, 0, 1},
	}}
	srv := testServer(t, p)

	callTool(t, srv, "save_note", map[string]interface{}{"title": "near", "content": ""})
	callTool(t, srv, "save_note", map[string]interface{}{"title": "far", "content": ""})

	r := callTool(t, srv, "semantic_search", map[string]interface{}{"query": "question"})
	if r.IsError {
		t.Fatalf("search failed: %s", resultText(r))
	}
	var results []noteservice.SearchResult
	if err := json.Unmarshal([]byte(resultText(r)), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Title != "near" {
		t.Errorf("results = %+v, want near ranked first", results)
	}

	r = callTool(t, srv, "semantic_search", map[string]interface{}{
		"query": "question", "limit": float64(1),
	})
	if err := json.Unmarshal([]byte(resultText(r)), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("limited results = %d, want 1", len(results))
	}
}

func TestSemanticSearchUnavailable(t *testing.T) {
	srv := testServer(t, nil)
	r := callTool(t, srv, "semantic_search", map[string]interface{}{"query": "anything"})
	if !r.IsError {
		t.Error("expected error when no query embedding is obtainable")
	}
}
