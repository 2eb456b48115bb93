package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
)

// ProjectInfo is the trimmed project block inside the structured payload.
type ProjectInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ReportData is the structured counterpart of the markdown report, meant
// for downstream tooling rather than humans.
type ReportData struct {
	Project      ProjectInfo         `json:"project"`
	Metrics      domain.Metrics      `json:"metrics"`
	WorkPackages domain.GroupedItems `json:"work_packages"`
	TimeEntries  []domain.TimeEntry  `json:"time_entries"`
	Members      []domain.Member     `json:"members"`
	Blockers     []domain.Blocker    `json:"blockers"`
	Relations    []domain.Relation   `json:"relations"`
}

// Metadata describes the request and result shape of a data export.
type Metadata struct {
	ProjectID         int    `json:"project_id"`
	FromDate          string `json:"from_date"`
	ToDate            string `json:"to_date"`
	GeneratedAt       string `json:"generated_at"`
	WorkPackagesCount int    `json:"work_packages_count"`
	TimeEntriesCount  int    `json:"time_entries_count"`
	MembersCount      int    `json:"members_count"`
}

// Envelope wraps a data export with its metadata.
type Envelope struct {
	Metadata Metadata   `json:"metadata"`
	Data     ReportData `json:"data"`
}

// BuildReportData assembles the structured payload from a bundle. All
// collection fields come out non-nil so consumers always see arrays.
func BuildReportData(b Bundle, rules *Rules) ReportData {
	data := ReportData{
		Project: ProjectInfo{
			ID:          b.Project.ID,
			Name:        b.Project.Name,
			Description: b.Project.Description,
		},
		Metrics:      Aggregate(b.Items, b.TimeEntries, rules),
		WorkPackages: GroupByStatus(b.Items, rules),
		TimeEntries:  b.TimeEntries,
		Members:      b.Members,
		Blockers:     NewBlockerDetector(rules).Detect(b.Items, b.Relations),
		Relations:    b.Relations,
	}
	if data.TimeEntries == nil { data.TimeEntries = []domain.TimeEntry{} }
	if data.Members == nil { data.Members = []domain.Member{} }
	if data.Relations == nil { data.Relations = []domain.Relation{} }
	return data
}

// RenderJSON renders the structured payload alone, two-space indented.
func RenderJSON(b Bundle, rules *Rules) (string, error) {
	return marshalIndent(BuildReportData(b, rules))
}

// RenderEnvelope renders the payload wrapped in a metadata envelope.
func RenderEnvelope(b Bundle, rules *Rules, now time.Time) (string, error) {
	env := Envelope{
		Metadata: Metadata{
			ProjectID:         b.Project.ID,
			FromDate:          b.Window.FromDate(),
			ToDate:            b.Window.ToDate(),
			GeneratedAt:       now.Format(time.RFC3339),
			WorkPackagesCount: len(b.Items),
			TimeEntriesCount:  len(b.TimeEntries),
			MembersCount:      len(b.Members),
		},
		Data: BuildReportData(b, rules),
	}
	return marshalIndent(env)
}

// marshalIndent keeps non-ASCII text (subjects, names) readable as-is.
func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil { return "", fmt.Errorf("encode report: %w", err) }
	return buf.String(), nil
}
