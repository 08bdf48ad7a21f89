// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes LinkHub tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/linkhub/internal/directory"
	"github.com/starford/linkhub/internal/models"
	"github.com/starford/linkhub/internal/store"
)

// Server wraps the MCP server with LinkHub tools. Read tools run under
// an operator identity with full visibility; the transport is local
// stdio, so scoping is the client process's concern. Writes name their
// owner explicitly.
type Server struct {
	mcp *server.MCPServer
	svc *directory.Service
	db  store.Directory
}

var operatorIdentity = models.Identity{Role: models.RoleAdmin}

// New creates a new MCP server with all LinkHub tools registered.
func New(svc *directory.Service, db store.Directory) *Server {
	s := &Server{svc: svc, db: db}

	s.mcp = server.NewMCPServer(
		"LinkHub",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_links",
		mcp.WithDescription("Search the link directory by text query, with optional category and status filters."),
		mcp.WithString("query", mcp.Description("Search query matched against title, description, and tags")),
		mcp.WithString("category_id", mcp.Description("Restrict to one category")),
		mcp.WithString("status", mcp.Description("Filter by status: Active, Pending, Dead, Archived")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchLinks)

	s.mcp.AddTool(mcp.NewTool("get_link",
		mcp.WithDescription("Read one link with its category, department, owner, and tags."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Link id")),
	), s.getLink)

	s.mcp.AddTool(mcp.NewTool("create_link",
		mcp.WithDescription("Create a link in the directory, owned by the named profile."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Link title")),
		mcp.WithString("url", mcp.Required(), mcp.Description("Target URL")),
		mcp.WithString("owner_email", mcp.Required(), mcp.Description("Email of the profile that will own the link")),
		mcp.WithString("description", mcp.Description("Optional description")),
		mcp.WithString("category_id", mcp.Description("Optional category id")),
	), s.createLink)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List all link categories in display order."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("popular_tags",
		mcp.WithDescription("Most-used tags, highest usage first."),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.popularTags)

	s.mcp.AddTool(mcp.NewTool("popular_links",
		mcp.WithDescription("Most clicked active links."),
		mcp.WithNumber("limit", mcp.Description("Max results (default 10)")),
	), s.popularLinks)

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

func (s *Server) searchLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := models.LinkFilter{
		Query:      req.GetString("query", ""),
		CategoryID: req.GetString("category_id", ""),
		Status:     models.LinkStatus(req.GetString("status", "")),
		Limit:      req.GetInt("limit", 20),
	}
	resp, err := s.svc.SearchLinks(ctx, operatorIdentity, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(resp, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	link, err := s.svc.GetLink(ctx, operatorIdentity, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(link, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	email, err := req.RequireString("owner_email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	owner, err := s.db.GetProfileByEmail(email)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no profile for %s", email)), nil
	}

	ident := models.Identity{
		ProfileID:    owner.ID,
		DepartmentID: owner.DepartmentID,
		Role:         owner.Role,
	}
	link, err := s.svc.CreateLink(ctx, ident, models.CreateLinkRequest{
		Title:       title,
		URL:         url,
		Description: req.GetString("description", ""),
		CategoryID:  req.GetString("category_id", ""),
		Visibility:  models.VisibilityPublic,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(link, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.svc.ListCategories(ctx, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) popularTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.PopularTags(ctx, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(tags, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) popularLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	links, err := s.svc.PopularLinks(ctx, operatorIdentity, req.GetInt("limit", 10))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(links, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
