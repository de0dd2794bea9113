package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/testutil"
	"github.com/starford/folio/internal/uploads"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func testServer(t *testing.T) *Server {
	t.Helper()

	_, store := testutil.TestStore(t)
	files, err := uploads.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	srv := New(Services{
		Projects:     portfolio.NewProjects(store, nil),
		Education:    portfolio.NewEducation(store, nil),
		Skills:       portfolio.NewSkills(store, nil),
		Technologies: portfolio.NewTechnologies(store, nil),
		Messages:     portfolio.NewMessages(store, nil, nil),
		Stats:        portfolio.NewStats(store),
		PersonalInfo: portfolio.NewPersonalInfo(store, nil),
		Files:        files,
	})
	srv.fetch = func(context.Context, string) ([]byte, error) {
		return nil, errors.New("network disabled in tests")
	}
	return srv
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_projects":
		result, err = srv.listProjects(ctx, req)
	case "get_project":
		result, err = srv.getProject(ctx, req)
	case "list_skills":
		result, err = srv.listSkills(ctx, req)
	case "list_messages":
		result, err = srv.listMessages(ctx, req)
	case "mark_message_read":
		result, err = srv.markMessageRead(ctx, req)
	case "get_stats":
		result, err = srv.getStats(ctx, req)
	case "attach_project_image":
		result, err = srv.attachProjectImage(ctx, req)
	case "get_content_schema":
		result, err = srv.getContentSchema(ctx, req)
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

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func createProject(t *testing.T, srv *Server, title string, featured bool) models.Project {
	t.Helper()
	p, err := srv.svc.Projects.Create(context.Background(), portfolio.ProjectPatch{
		Title:       strp(title),
		Description: strp("desc"),
		Featured:    boolp(featured),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestListProjectsFeaturedOnly(t *testing.T) {
	srv := testServer(t)
	createProject(t, srv, "Plain", false)
	createProject(t, srv, "Star", true)

	var all []models.Project
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "list_projects", nil))), &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}

	var featured []models.Project
	r := callTool(t, srv, "list_projects", map[string]interface{}{"featured_only": true})
	if err := json.Unmarshal([]byte(resultText(r)), &featured); err != nil {
		t.Fatal(err)
	}
	if len(featured) != 1 || featured[0].Title != "Star" {
		t.Errorf("featured = %+v", featured)
	}
}

func TestGetProjectMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_project", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing project")
	}
	if resultText(r) != "not found" {
		t.Errorf("text = %q", resultText(r))
	}
}

func TestListSkillsByCategory(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()
	for _, s := range []struct{ name, cat string }{{"Go", "backend"}, {"CSS", "frontend"}} {
		if _, err := srv.svc.Skills.Create(ctx, portfolio.SkillPatch{Name: strp(s.name), Category: strp(s.cat)}); err != nil {
			t.Fatal(err)
		}
	}

	r := callTool(t, srv, "list_skills", map[string]interface{}{"category": "backend"})
	text := resultText(r)
	if !strings.Contains(text, `"Go"`) || strings.Contains(text, `"CSS"`) {
		t.Errorf("filtered skills = %s", text)
	}
}

func TestMessagesUnreadAndMarkRead(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()
	m, err := srv.svc.Messages.Create(ctx, portfolio.MessagePatch{
		Name:    strp("Ann"),
		Email:   strp("ann@example.com"),
		Message: strp("hello"),
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_messages", map[string]interface{}{"unread_only": true})
	if !strings.Contains(resultText(r), m.ID) {
		t.Fatalf("unread list missing message: %s", resultText(r))
	}

	r = callTool(t, srv, "mark_message_read", map[string]interface{}{"id": m.ID})
	if r.IsError {
		t.Fatalf("mark read: %s", resultText(r))
	}

	r = callTool(t, srv, "list_messages", map[string]interface{}{"unread_only": true})
	if resultText(r) != "[]" {
		t.Errorf("unread after mark = %s", resultText(r))
	}
}

func TestGetStats(t *testing.T) {
	srv := testServer(t)
	if _, err := srv.svc.Stats.Increment(context.Background(), portfolio.CounterCVView); err != nil {
		t.Fatal(err)
	}
	r := callTool(t, srv, "get_stats", nil)
	if !strings.Contains(resultText(r), `"cvViews": 1`) {
		t.Errorf("stats = %s", resultText(r))
	}
}

func TestAttachProjectImageDataURI(t *testing.T) {
	srv := testServer(t)
	p := createProject(t, srv, "Pic", false)

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	r := callTool(t, srv, "attach_project_image", map[string]interface{}{"id": p.ID, "url": uri})
	if r.IsError {
		t.Fatalf("attach: %s", resultText(r))
	}
	var res attachResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Image, "/assets/images/projects/") || !strings.HasSuffix(res.Image, ".png") {
		t.Errorf("image path = %q", res.Image)
	}
	first := res.Image

	got, err := srv.svc.Projects.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Image != first {
		t.Errorf("project image = %q, want %q", got.Image, first)
	}

	// Replacing removes the previous file.
	r = callTool(t, srv, "attach_project_image", map[string]interface{}{"id": p.ID, "url": uri})
	if r.IsError {
		t.Fatalf("replace: %s", resultText(r))
	}
	oldPath := filepath.Join(srv.svc.Files.Root(), filepath.FromSlash(strings.TrimPrefix(first, uploads.URLPrefix)))
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("old image still present: %v", err)
	}
}

func TestAttachProjectImageRejectsNonImage(t *testing.T) {
	srv := testServer(t)
	p := createProject(t, srv, "Doc", false)

	uri := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4\n"))
	r := callTool(t, srv, "attach_project_image", map[string]interface{}{"id": p.ID, "url": uri})
	if !r.IsError {
		t.Fatal("expected rejection for pdf")
	}
	got, _ := srv.svc.Projects.Get(context.Background(), p.ID)
	if got.Image != "" {
		t.Errorf("image set despite rejection: %q", got.Image)
	}
}

func TestAttachProjectImageUnknownProject(t *testing.T) {
	srv := testServer(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	r := callTool(t, srv, "attach_project_image", map[string]interface{}{"id": "missing", "url": uri})
	if !r.IsError {
		t.Fatal("expected error for unknown project")
	}
}

func TestDecodeDataURI(t *testing.T) {
	if _, err := decodeDataURI("data:text/plain,hello"); err == nil {
		t.Error("expected error for non-base64 data URI")
	}
	if _, err := decodeDataURI("data:image/png;base64"); err == nil {
		t.Error("expected error for missing comma")
	}
	data, err := decodeDataURI("data:image/png;base64," + base64.RawStdEncoding.EncodeToString([]byte("ab")))
	if err != nil || string(data) != "ab" {
		t.Errorf("raw base64 = %q, %v", data, err)
	}
}

func TestCheckBlockedHost(t *testing.T) {
	for _, host := range []string{"127.0.0.1", "10.0.0.5", "169.254.169.254", "metadata.google.internal", "::1"} {
		if err := checkBlockedHost(host); err == nil {
			t.Errorf("%s should be blocked", host)
		}
	}
	if err := checkBlockedHost("93.184.216.34"); err != nil {
		t.Errorf("public address blocked: %v", err)
	}
}

func TestFetchHTTPRejectsScheme(t *testing.T) {
	if _, err := fetchHTTP(context.Background(), "ftp://example.com/a.png"); err == nil {
		t.Error("expected scheme rejection")
	}
}

func TestContentSchema(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_content_schema", nil)
	if !strings.Contains(resultText(r), "## Project") {
		t.Errorf("schema = %q", resultText(r))
	}
}
