package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client is everything the generator needs from the tracker API.
type Client interface {
	GetProject(ctx context.Context, id int) (domain.Project, error)
	ListWorkPackages(ctx context.Context, projectID, offset, pageSize int) ([]domain.WorkItem, int, error)
	ListMemberships(ctx context.Context, projectID int) ([]domain.Member, error)
	ListTimeEntries(ctx context.Context, projectID int, from, to string) ([]domain.TimeEntry, error)
	ListRelations(ctx context.Context, workPackageID int) ([]domain.Relation, error)
}

// RunRecorder persists an audit row per generation run. A nil recorder
// disables auditing; recording failures never fail the report.
type RunRecorder interface {
	StartRun(ctx context.Context, runID string, projectID int, from, to string) error
	FinishRun(ctx context.Context, runID, status, detail string) error
}

// Params are the caller-supplied knobs for one report.
type Params struct {
	ProjectID  int
	FromDate   string
	ToDate     string
	SprintGoal string
	TeamName   string
	Format     string
}

// Generator orchestrates one report run: window validation, exhaustive
// fetch, relevance filtering, enrichment, rendering.
type Generator struct {
	client     Client
	rules      *Rules
	recorder   RunRecorder
	pageSize   int
	probeLimit int
	log        zerolog.Logger
	now        func() time.Time
}

func NewGenerator(client Client, rules *Rules, recorder RunRecorder, pageSize, probeLimit int, log zerolog.Logger) *Generator {
	if probeLimit <= 0 { probeLimit = 10 }
	return &Generator{
		client:     client,
		rules:      rules,
		recorder:   recorder,
		pageSize:   pageSize,
		probeLimit: probeLimit,
		log:        log,
		now:        time.Now,
	}
}

// errorText is the caller-facing failure shape. Tools return it as a
// normal string payload, never as a transport error.
func errorText(msg string) string { return "❌ " + msg }

// Generate produces a weekly report for the given window. The returned
// string is either the rendered report or an error-marked message.
func (g *Generator) Generate(ctx context.Context, p Params) string {
	w, err := ParseWindow(p.FromDate, p.ToDate)
	if err != nil { return errorText(err.Error()) }

	runID := uuid.NewString()
	g.log.Info().Str("run", runID).Int("project", p.ProjectID).Str("from", p.FromDate).Str("to", p.ToDate).Msg("report run started")
	g.startRun(ctx, runID, p)

	b, err := g.gather(ctx, p.ProjectID, w, true)
	if err != nil {
		g.finishRun(ctx, runID, "failed", err.Error())
		return errorText("failed to generate weekly report: " + err.Error())
	}
	b.SprintGoal, b.TeamName = p.SprintGoal, p.TeamName

	var out string
	if strings.EqualFold(p.Format, "json") {
		out, err = RenderJSON(b, g.rules)
		if err != nil {
			g.finishRun(ctx, runID, "failed", err.Error())
			return errorText("failed to generate weekly report: " + err.Error())
		}
	} else {
		out = RenderMarkdown(b, g.rules)
	}

	g.finishRun(ctx, runID, "success", fmt.Sprintf("%d work packages", len(b.Items)))
	return out
}

// ExportData produces the structured JSON payload wrapped in a metadata
// envelope. Relations are not probed here; the export covers what a custom
// consumer can rebuild reports from.
func (g *Generator) ExportData(ctx context.Context, projectID int, from, to string) string {
	w, err := ParseWindow(from, to)
	if err != nil { return errorText(err.Error()) }

	runID := uuid.NewString()
	g.startRun(ctx, runID, Params{ProjectID: projectID, FromDate: from, ToDate: to})

	b, err := g.gather(ctx, projectID, w, false)
	if err != nil {
		g.finishRun(ctx, runID, "failed", err.Error())
		return errorText("failed to get report data: " + err.Error())
	}

	out, err := RenderEnvelope(b, g.rules, g.now())
	if err != nil {
		g.finishRun(ctx, runID, "failed", err.Error())
		return errorText("failed to get report data: " + err.Error())
	}
	g.finishRun(ctx, runID, "success", fmt.Sprintf("%d work packages", len(b.Items)))
	return out
}

// GenerateThisWeek renders a markdown report for the Monday-Sunday week
// containing the current date.
func (g *Generator) GenerateThisWeek(ctx context.Context, projectID int, teamName string) string {
	w := CurrentWeek(g.now())
	return g.Generate(ctx, Params{ProjectID: projectID, FromDate: w.FromDate(), ToDate: w.ToDate(), TeamName: teamName})
}

// GenerateLastWeek renders a markdown report for the previous Monday-Sunday week.
func (g *Generator) GenerateLastWeek(ctx context.Context, projectID int, teamName string) string {
	w := PreviousWeek(g.now())
	return g.Generate(ctx, Params{ProjectID: projectID, FromDate: w.FromDate(), ToDate: w.ToDate(), TeamName: teamName})
}

// gather runs the fetch pipeline and assembles a render bundle. Project,
// work packages, members and time entries are all required; relations are
// best effort and capped.
func (g *Generator) gather(ctx context.Context, projectID int, w Window, withRelations bool) (Bundle, error) {
	project, err := g.client.GetProject(ctx, projectID)
	if err != nil { return Bundle{}, fmt.Errorf("get project: %w", err) }

	fetcher := NewRecordFetcher(g.client, g.pageSize, g.log)
	all, err := fetcher.FetchAll(ctx, projectID)
	if err != nil { return Bundle{}, err }

	filter := NewRelevanceFilter(g.rules, g.log)
	items := []domain.WorkItem{}
	for _, wp := range all {
		if filter.Relevant(wp, w) { items = append(items, wp) }
	}
	g.log.Info().Int("project", projectID).Int("fetched", len(all)).Int("relevant", len(items)).Msg("work packages filtered")

	members, err := g.client.ListMemberships(ctx, projectID)
	if err != nil { return Bundle{}, fmt.Errorf("list memberships: %w", err) }

	entries, err := g.client.ListTimeEntries(ctx, projectID, w.FromDate(), w.ToDate())
	if err != nil { return Bundle{}, fmt.Errorf("list time entries: %w", err) }

	relations := []domain.Relation{}
	if withRelations {
		for i, wp := range items {
			if i == g.probeLimit { break }
			rels, err := g.client.ListRelations(ctx, wp.ID)
			if err != nil {
				g.log.Debug().Err(err).Int("wp", wp.ID).Msg("relations probe failed; skipping")
				continue
			}
			relations = append(relations, rels...)
		}
	}

	return Bundle{
		Project:     project,
		Items:       items,
		TimeEntries: entries,
		Members:     members,
		Relations:   relations,
		Window:      w,
	}, nil
}

func (g *Generator) startRun(ctx context.Context, runID string, p Params) {
	if g.recorder == nil { return }
	if err := g.recorder.StartRun(ctx, runID, p.ProjectID, p.FromDate, p.ToDate); err != nil {
		g.log.Warn().Err(err).Str("run", runID).Msg("start run audit failed")
	}
}

func (g *Generator) finishRun(ctx context.Context, runID, status, detail string) {
	if g.recorder == nil { return }
	if err := g.recorder.FinishRun(ctx, runID, status, detail); err != nil {
		g.log.Warn().Err(err).Str("run", runID).Msg("finish run audit failed")
	}
}
