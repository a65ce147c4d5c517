// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Raido review workflow as tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/reviewservice"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *reviewservice.Service
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *reviewservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_snapshot",
		mcp.WithDescription("Snapshot the vault: track every note as to-review. "+
			"Replaces any existing snapshot without confirmation."),
	), s.createSnapshot)

	s.mcp.AddTool(mcp.NewTool("review_stats",
		mcp.WithDescription("Review progress for the current snapshot: totals, counts per status, percent reviewed."),
	), s.reviewStats)

	s.mcp.AddTool(mcp.NewTool("next_to_review",
		mcp.WithDescription("Pick a uniformly random note that still needs review."),
	), s.nextToReview)

	s.mcp.AddTool(mcp.NewTool("mark_reviewed",
		mcp.WithDescription("Mark a note as reviewed. Untracked notes are added to the snapshot."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative note path (e.g. topics/note.md)")),
		mcp.WithBoolean("open_next", mcp.Description("Also pick the next random to-review note")),
	), s.markReviewed)

	s.mcp.AddTool(mcp.NewTool("mark_to_review",
		mcp.WithDescription("Mark a note as needing another review pass. Untracked notes are added to the snapshot."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative note path")),
	), s.markToReview)

	s.mcp.AddTool(mcp.NewTool("list_to_review",
		mcp.WithDescription("List every tracked note still awaiting review."),
	), s.listToReview)

	s.mcp.AddTool(mcp.NewTool("add_new_files",
		mcp.WithDescription("Track vault notes created since the snapshot was taken, marked to-review."),
	), s.addNewFiles)

	s.mcp.AddTool(mcp.NewTool("delete_snapshot",
		mcp.WithDescription("Delete the review snapshot. Requires confirm=true; anything else cancels."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Explicit user confirmation")),
	), s.deleteSnapshot)

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

func (s *Server) createSnapshot(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.svc.CreateSnapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) reviewStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.svc.Summary(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			return mcp.NewToolResultError("no review snapshot; run create_snapshot first"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(sum.Stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) nextToReview(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := s.svc.NextToReview(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError("nothing left to review"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(f.Path), nil
}

func (s *Server) markReviewed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	openNext := req.GetBool("open_next", false)
	next, err := s.svc.MarkReviewed(ctx, path, openNext)
	if err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			return mcp.NewToolResultError("no review snapshot; run create_snapshot first"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if next != nil {
		return mcp.NewToolResultText(fmt.Sprintf("reviewed: %s\nnext: %s", path, next.Path)), nil
	}
	return mcp.NewToolResultText("reviewed: " + path), nil
}

func (s *Server) markToReview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.MarkToReview(ctx, path); err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			return mcp.NewToolResultError("no review snapshot; run create_snapshot first"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("to review: " + path), nil
}

func (s *Server) listToReview(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files := s.svc.ToReviewFiles(ctx)
	if len(files) == 0 {
		return mcp.NewToolResultText("nothing left to review"), nil
	}
	out := ""
	for _, f := range files {
		out += f.Path + "\n"
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) addNewFiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	added, err := s.svc.RefreshSnapshot(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			return mcp.NewToolResultError("no review snapshot; run create_snapshot first"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added %d new files", added)), nil
}

func (s *Server) deleteSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	confirm := req.GetBool("confirm", false)
	outcome, err := s.svc.DeleteSnapshot(ctx, review.Confirm(confirm))
	if err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			return mcp.NewToolResultError("no review snapshot"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(outcome)), nil
}
