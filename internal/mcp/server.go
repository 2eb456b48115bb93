// Package mcp exposes report generation and project lookup as MCP tools
// over stdio, so AI assistants can drive the weekly report pipeline.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
	"github.com/Donekulda/openproject-mcp-server/internal/report"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// ProjectDirectory is the read-only project lookup slice of the API client.
type ProjectDirectory interface {
	ListProjects(ctx context.Context, activeOnly bool) ([]domain.Project, error)
	GetProject(ctx context.Context, id int) (domain.Project, error)
}

// Server wraps the report generator and project directory as MCP tools.
type Server struct {
	server   *gomcp.Server
	gen      *report.Generator
	projects ProjectDirectory
	log      zerolog.Logger
}

func NewServer(gen *report.Generator, projects ProjectDirectory, version string, log zerolog.Logger) *Server {
	if version == "" { version = "dev" }
	s := &Server{gen: gen, projects: projects, log: log}
	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "openproject-mcp-server", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over stdio until the client disconnects or the context is
// cancelled. Nothing else may write to stdout while this runs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input types ---

type generateReportInput struct {
	ProjectID  int    `json:"project_id" jsonschema:"required,project ID to generate report for"`
	FromDate   string `json:"from_date" jsonschema:"required,report start date (YYYY-MM-DD)"`
	ToDate     string `json:"to_date" jsonschema:"required,report end date (YYYY-MM-DD)"`
	SprintGoal string `json:"sprint_goal,omitempty" jsonschema:"optional sprint goal text"`
	TeamName   string `json:"team_name,omitempty" jsonschema:"optional team/squad name"`
	Format     string `json:"format,omitempty" jsonschema:"output format: 'markdown' (default) or 'json'"`
}

type reportDataInput struct {
	ProjectID int    `json:"project_id" jsonschema:"required,project ID"`
	FromDate  string `json:"from_date" jsonschema:"required,start date (YYYY-MM-DD)"`
	ToDate    string `json:"to_date" jsonschema:"required,end date (YYYY-MM-DD)"`
}

type weekShortcutInput struct {
	ProjectID int    `json:"project_id" jsonschema:"required,project ID to generate report for"`
	TeamName  string `json:"team_name,omitempty" jsonschema:"optional team/squad name"`
}

type listProjectsInput struct {
	ActiveOnly    *bool `json:"active_only,omitempty" jsonschema:"only show active projects (default true)"`
	ShowHierarchy bool  `json:"show_hierarchy,omitempty" jsonschema:"display projects as a parent/child tree"`
}

type getProjectInput struct {
	ProjectID int `json:"project_id" jsonschema:"required,the project ID"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name: "generate_weekly_report",
		Description: "Generate a comprehensive weekly Agile/Scrum report for a project and date range. " +
			"Covers general info, executive summary, delivery movement, capacity, impediments, quality, " +
			"next week plan and sprint health. Output is markdown by default, or structured JSON.",
	}, s.handleGenerateReport)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name: "get_report_data",
		Description: "Collect all weekly report data and return it as structured JSON for custom processing: " +
			"project info, work packages grouped by status, time entries, members, metrics and blockers.",
	}, s.handleGetReportData)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "generate_this_week_report",
		Description: "Shortcut: generate the weekly report for the current Monday-Sunday week.",
	}, s.handleThisWeek)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "generate_last_week_report",
		Description: "Shortcut: generate the weekly report for the previous Monday-Sunday week.",
	}, s.handleLastWeek)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_projects",
		Description: "List projects with their status, optionally as a parent/child hierarchy.",
	}, s.handleListProjects)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_project",
		Description: "Get detailed information about a specific project.",
	}, s.handleGetProject)
}

// --- Tool handlers ---

func (s *Server) handleGenerateReport(ctx context.Context, _ *gomcp.CallToolRequest, in generateReportInput) (*gomcp.CallToolResult, any, error) {
	out := s.gen.Generate(ctx, report.Params{
		ProjectID:  in.ProjectID,
		FromDate:   in.FromDate,
		ToDate:     in.ToDate,
		SprintGoal: in.SprintGoal,
		TeamName:   in.TeamName,
		Format:     in.Format,
	})
	return textResult(out), nil, nil
}

func (s *Server) handleGetReportData(ctx context.Context, _ *gomcp.CallToolRequest, in reportDataInput) (*gomcp.CallToolResult, any, error) {
	return textResult(s.gen.ExportData(ctx, in.ProjectID, in.FromDate, in.ToDate)), nil, nil
}

func (s *Server) handleThisWeek(ctx context.Context, _ *gomcp.CallToolRequest, in weekShortcutInput) (*gomcp.CallToolResult, any, error) {
	return textResult(s.gen.GenerateThisWeek(ctx, in.ProjectID, in.TeamName)), nil, nil
}

func (s *Server) handleLastWeek(ctx context.Context, _ *gomcp.CallToolRequest, in weekShortcutInput) (*gomcp.CallToolResult, any, error) {
	return textResult(s.gen.GenerateLastWeek(ctx, in.ProjectID, in.TeamName)), nil, nil
}

func (s *Server) handleListProjects(ctx context.Context, _ *gomcp.CallToolRequest, in listProjectsInput) (*gomcp.CallToolResult, any, error) {
	activeOnly := true
	if in.ActiveOnly != nil { activeOnly = *in.ActiveOnly }

	projects, err := s.projects.ListProjects(ctx, activeOnly)
	if err != nil {
		return textResult("❌ failed to list projects: " + err.Error()), nil, nil
	}
	if in.ShowHierarchy {
		return textResult(formatProjectHierarchy(projects)), nil, nil
	}
	return textResult(formatProjectList(projects)), nil, nil
}

func (s *Server) handleGetProject(ctx context.Context, _ *gomcp.CallToolRequest, in getProjectInput) (*gomcp.CallToolResult, any, error) {
	p, err := s.projects.GetProject(ctx, in.ProjectID)
	if err != nil {
		return textResult("❌ failed to get project: " + err.Error()), nil, nil
	}
	return textResult(formatProjectDetail(p)), nil, nil
}

// --- Helpers ---

func textResult(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

func activeWord(active bool) string {
	if active { return "Active" }
	return "Inactive"
}

func formatProjectList(projects []domain.Project) string {
	if len(projects) == 0 { return "No projects found." }
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Found %d project(s):\n\n", len(projects))
	for _, p := range projects {
		fmt.Fprintf(&sb, "- **%s** (ID: %d, identifier: %s) - %s\n", p.Name, p.ID, p.Identifier, activeWord(p.Active))
	}
	return sb.String()
}

func formatProjectHierarchy(projects []domain.Project) string {
	if len(projects) == 0 { return "No projects found." }

	childrenOf := map[int][]domain.Project{}
	var roots []domain.Project
	for _, p := range projects {
		if p.ParentID > 0 {
			childrenOf[p.ParentID] = append(childrenOf[p.ParentID], p)
		} else {
			roots = append(roots, p)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Found %d project(s) in hierarchical view:\n\n", len(projects))

	shown := map[int]bool{}
	var writeTree func(p domain.Project, indent int)
	writeTree = func(p domain.Project, indent int) {
		prefix := strings.Repeat("  ", indent)
		fmt.Fprintf(&sb, "%s- **%s** (ID: %d)\n", prefix, p.Name, p.ID)
		fmt.Fprintf(&sb, "%s  Status: %s\n", prefix, activeWord(p.Active))
		shown[p.ID] = true
		for _, child := range childrenOf[p.ID] { writeTree(child, indent+1) }
	}
	for _, root := range roots { writeTree(root, 0) }

	// Subprojects whose parent is outside the fetched set
	var orphaned []domain.Project
	for _, p := range projects {
		if !shown[p.ID] { orphaned = append(orphaned, p) }
	}
	if len(orphaned) > 0 {
		sb.WriteString("\n**Subprojects (parent not shown)**:\n")
		for _, p := range orphaned {
			fmt.Fprintf(&sb, "- **%s** (ID: %d)\n", p.Name, p.ID)
		}
	}
	return sb.String()
}

func formatProjectDetail(p domain.Project) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Project #%d\n\n", p.ID)
	fmt.Fprintf(&sb, "**Name**: %s\n", p.Name)
	fmt.Fprintf(&sb, "**Identifier**: %s\n", p.Identifier)
	fmt.Fprintf(&sb, "**Status**: %s\n", activeWord(p.Active))
	if p.Public {
		sb.WriteString("**Public**: Yes\n")
	} else {
		sb.WriteString("**Public**: No\n")
	}
	if p.Description != "" {
		fmt.Fprintf(&sb, "\n**Description**:\n%s\n", p.Description)
	}
	if p.CreatedAt != "" {
		fmt.Fprintf(&sb, "\n**Created**: %s\n", p.CreatedAt)
	}
	if p.UpdatedAt != "" {
		fmt.Fprintf(&sb, "**Updated**: %s\n", p.UpdatedAt)
	}
	return sb.String()
}
