// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes portfolio content to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/uploads"
)

// Services are the portfolio services exposed as tools.
type Services struct {
	Projects     *portfolio.Projects
	Education    *portfolio.Education
	Skills       *portfolio.Skills
	Technologies *portfolio.Technologies
	Messages     *portfolio.Messages
	Stats        *portfolio.Stats
	PersonalInfo *portfolio.PersonalInfo
	Files        *uploads.Store
}

// Server wraps the MCP server with portfolio tools.
type Server struct {
	mcp *server.MCPServer
	svc Services
	// fetch downloads remote assets; replaced in tests.
	fetch func(ctx context.Context, rawURL string) ([]byte, error)
}

// New creates a new MCP server with all portfolio tools registered.
func New(svc Services) *Server {
	s := &Server{svc: svc, fetch: fetchHTTP}

	s.mcp = server.NewMCPServer(
		"Folio",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List portfolio projects in display order."),
		mcp.WithBoolean("featured_only", mcp.Description("Only return featured projects")),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Get one project by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
	), s.getProject)

	s.mcp.AddTool(mcp.NewTool("list_education",
		mcp.WithDescription("List education entries, most recent first."),
	), s.listEducation)

	s.mcp.AddTool(mcp.NewTool("list_skills",
		mcp.WithDescription("List skills, optionally filtered by category."),
		mcp.WithString("category", mcp.Description("Optional category filter")),
	), s.listSkills)

	s.mcp.AddTool(mcp.NewTool("list_technologies",
		mcp.WithDescription("List the technology stack."),
	), s.listTechnologies)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Site counters: CV views and downloads, visitors and visitors per month."),
	), s.getStats)

	s.mcp.AddTool(mcp.NewTool("list_messages",
		mcp.WithDescription("List contact messages in the inbox, newest first."),
		mcp.WithBoolean("unread_only", mcp.Description("Only return unread messages")),
	), s.listMessages)

	s.mcp.AddTool(mcp.NewTool("mark_message_read",
		mcp.WithDescription("Mark a contact message as read."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Message id")),
	), s.markMessageRead)

	s.mcp.AddTool(mcp.NewTool("attach_project_image",
		mcp.WithDescription("Download an image (http/https URL or base64 data URI) and set it as a project's image. "+
			"JPEG, PNG and GIF up to 5 MB are accepted."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("url", mcp.Required(), mcp.Description("Image URL or data URI")),
	), s.attachProjectImage)

	s.mcp.AddTool(mcp.NewTool("get_content_schema",
		mcp.WithDescription("Returns the field reference for portfolio records."),
	), s.getContentSchema)

	s.mcp.AddResource(
		mcp.NewResource("folio://personal-info", "Personal Info",
			mcp.WithResourceDescription("The site owner's free-form profile document."),
			mcp.WithMIMEType("application/json"),
		),
		s.readPersonalInfo,
	)
	s.mcp.AddResource(
		mcp.NewResource("folio://content-schema", "Content Schema",
			mcp.WithResourceDescription("Field reference for portfolio records."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContentSchema,
	)

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

func jsonResult(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return toolError(err), nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.Projects.List(ctx)
	if err != nil || !req.GetBool("featured_only", false) {
		return jsonResult(items, err)
	}
	featured := items[:0]
	for _, p := range items {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return jsonResult(featured, nil)
}

func (s *Server) getProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Projects.Get(ctx, id))
}

func (s *Server) listEducation(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Education.List(ctx))
}

func (s *Server) listSkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.Skills.List(ctx)
	category := req.GetString("category", "")
	if err != nil || category == "" {
		return jsonResult(items, err)
	}
	filtered := items[:0]
	for _, sk := range items {
		if sk.Category == category {
			filtered = append(filtered, sk)
		}
	}
	return jsonResult(filtered, nil)
}

func (s *Server) listTechnologies(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Technologies.List(ctx))
}

func (s *Server) getStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Stats.Get(ctx))
}

func (s *Server) listMessages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.Messages.List(ctx)
	if err != nil || !req.GetBool("unread_only", false) {
		return jsonResult(items, err)
	}
	unread := items[:0]
	for _, m := range items {
		if !m.Read {
			unread = append(unread, m)
		}
	}
	return jsonResult(unread, nil)
}

func (s *Server) markMessageRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Messages.MarkRead(ctx, id))
}

func (s *Server) getContentSchema(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContentSchema), nil
}

func (s *Server) readContentSchema(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "folio://content-schema",
			MIMEType: "text/markdown",
			Text:     ContentSchema,
		},
	}, nil
}

func (s *Server) readPersonalInfo(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	info, err := s.svc.PersonalInfo.Get(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "folio://personal-info",
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
