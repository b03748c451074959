// Package mcpserver exposes the note store and semantic search to external
// agents over MCP (Model Context Protocol) via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/opennote/opennote/internal/apperr"
	"github.com/opennote/opennote/internal/noteservice"
	"github.com/opennote/opennote/internal/store"
)

// Server wraps the MCP server with the note tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates an MCP server with all note tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"OpenNote",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes in the app (id and title only)."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Get a single note by its ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The ID of the note to retrieve")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Create or update a note. Omit the id to create a new note."),
		mcp.WithString("id", mcp.Description("Optional ID of the note to update")),
		mcp.WithString("title", mcp.Required(), mcp.Description("The title of the note")),
		mcp.WithString("content", mcp.Required(), mcp.Description("The HTML content of the note")),
	), s.saveNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by its ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The ID of the note to delete")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("semantic_search",
		mcp.WithDescription("Search notes using semantic similarity."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The search query")),
		mcp.WithNumber("limit", mcp.Description("Max number of results to return (default 5)")),
	), s.semanticSearch)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// parseID accepts both numeric and string note ids, since MCP clients send
// either.
func parseID(req mcp.CallToolRequest) (int64, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id: %q", raw)
	}
	return id, nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs, err := s.svc.ListRefs(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if refs == nil {
		refs = []noteservice.NoteRef{}
	}
	out, _ := json.Marshal(refs)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := parseID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultText(`{"error":"Note not found"}`), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(note)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	draft := store.Draft{Title: &title, Content: &content}
	if raw := req.GetString("id", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid note id: %q", raw)), nil
		}
		draft.ID = &id
	}

	note, err := s.svc.SaveNote(ctx, draft)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError("note not found"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(note)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := parseID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(`{"success":true}`), nil
}

func (s *Server) semanticSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 5)

	results, err := s.svc.SemanticSearch(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if results == nil {
		results = []noteservice.SearchResult{}
	}
	out, _ := json.Marshal(results)
	return mcp.NewToolResultText(string(out)), nil
}
