package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle(t *testing.T) Bundle {
	t.Helper()
	w, err := ParseWindow("2025-12-02", "2025-12-08")
	require.NoError(t, err)
	return Bundle{
		Project: domain.Project{ID: 5, Name: "Mobile Banking", Description: "Customer-facing app"},
		Items: []domain.WorkItem{
			{ID: 101, Subject: "Implement login flow", StatusName: "Closed", TypeName: "Feature", AssigneeName: "Ada", UpdatedAt: "2025-12-03T10:00:00Z"},
			{ID: 102, Subject: "Fix crash on startup", StatusName: "In progress", TypeName: "Bug", AssigneeName: "Bela", UpdatedAt: "2025-12-04T10:00:00Z", DueDate: "2025-12-10"},
			{ID: 103, Subject: "Design onboarding", StatusName: "New", TypeName: "Task", UpdatedAt: "2025-12-05T10:00:00Z"},
		},
		TimeEntries: []domain.TimeEntry{
			{ID: 1, Hours: 6, Activity: "Development"},
			{ID: 2, Hours: 2, Activity: "Testing"},
		},
		Members: []domain.Member{{Name: "Ada"}, {Name: "Bela"}},
		Window:  w,
		TeamName: "Core Squad",
	}
}

func TestRenderMarkdown_SectionOrderAndHeader(t *testing.T) {
	out := RenderMarkdown(testBundle(t), DefaultRules())

	sections := []string{
		"# WEEKLY REPORT - AGILE SCRUM",
		"## A. GENERAL INFORMATION",
		"## B. EXECUTIVE SUMMARY",
		"## C. DELIVERY & BACKLOG MOVEMENT",
		"## D. RESOURCES & EXECUTION CAPACITY",
		"## E. IMPEDIMENTS & DEPENDENCIES",
		"## F. QUALITY & SYSTEM STABILITY",
		"## G. NEXT WEEK PLAN",
		"## H. SPRINT HEALTH & IMPROVEMENTS",
		"## APPENDIX: EXECUTIVE SUMMARY FOR LEADERSHIP",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}

	assert.Contains(t, out, "| From Date - To Date | 2025-12-02 - 2025-12-08 |")
	assert.Contains(t, out, "| Team/Squad | Core Squad |")
	assert.Contains(t, out, "| Project ID | #5 |")
	assert.Contains(t, out, "| Sprint Goal | N/A |")
}

func TestRenderMarkdown_StatusIndicator(t *testing.T) {
	b := testBundle(t)

	// one done vs one in progress: on track
	out := RenderMarkdown(b, DefaultRules())
	assert.Contains(t, out, "🟢 On track")

	// any blocked item wins
	b.Items = append(b.Items, domain.WorkItem{ID: 104, Subject: "Waiting on infra", StatusName: "Blocked"})
	out = RenderMarkdown(b, DefaultRules())
	assert.Contains(t, out, "🔴 Off track")
	assert.Contains(t, out, "**Main Impediment:** 1 work package(s) currently blocked")

	// more in flight than finished, nothing blocked: at risk
	b.Items = []domain.WorkItem{
		{ID: 1, StatusName: "In progress"},
		{ID: 2, StatusName: "In progress"},
		{ID: 3, StatusName: "Closed"},
	}
	out = RenderMarkdown(b, DefaultRules())
	assert.Contains(t, out, "🟡 At risk")
}

func TestRenderMarkdown_TimeDistributionOmittedAtZeroHours(t *testing.T) {
	b := testBundle(t)
	b.TimeEntries = nil
	out := RenderMarkdown(b, DefaultRules())
	assert.NotContains(t, out, "Time Distribution by Activity Type")
	assert.Contains(t, out, "**Weekly Capacity:** 0.0 person-hours")

	b = testBundle(t)
	out = RenderMarkdown(b, DefaultRules())
	assert.Contains(t, out, "Time Distribution by Activity Type")
	assert.Contains(t, out, "| Development | 6.0 | 75.0% |")
	assert.Contains(t, out, "| QA/Testing | 2.0 | 25.0% |")
}

func TestRenderMarkdown_DeScopedSectionConditional(t *testing.T) {
	b := testBundle(t)
	out := RenderMarkdown(b, DefaultRules())
	assert.NotContains(t, out, "### 4) De-scoped Work")

	b.Items = append(b.Items, domain.WorkItem{ID: 105, Subject: "Old experiment", StatusName: "Rejected"})
	out = RenderMarkdown(b, DefaultRules())
	assert.Contains(t, out, "### 4) De-scoped Work (Stopped/Reprioritized)")
	assert.Contains(t, out, "| #105 Old experiment | _(Requires update)_ | Rejected |")
}

func TestRenderMarkdown_RowFormatting(t *testing.T) {
	b := testBundle(t)
	out := RenderMarkdown(b, DefaultRules())

	// due date preferred, updated date as fallback
	assert.Contains(t, out, "| [Bug #102] | Fix crash on startup | Bela | 2025-12-10 | In progress |")
	assert.Contains(t, out, "| [Feature #101] | Implement login flow | Ada | 2025-12-03 | Closed |")
	assert.Contains(t, out, "| [Task #103] | Design onboarding | Unassigned | 2025-12-05 | New |")
}

func TestRenderMarkdown_TruncatesLongSubjects(t *testing.T) {
	b := testBundle(t)
	long := strings.Repeat("x", 80)
	// an in-progress item appears only in table rows, where truncation applies
	b.Items = []domain.WorkItem{{ID: 1, Subject: long, StatusName: "In progress", UpdatedAt: "2025-12-03T10:00:00Z"}}
	out := RenderMarkdown(b, DefaultRules())
	assert.Contains(t, out, strings.Repeat("x", 50))
	assert.NotContains(t, out, strings.Repeat("x", 51))
}

func TestRenderMarkdown_TruncationCountsRunesNotBytes(t *testing.T) {
	b := testBundle(t)
	// a multi-byte rune straddling byte 50 must survive truncation whole
	long := strings.Repeat("a", 49) + "Ú" + strings.Repeat("x", 30)
	b.Items = []domain.WorkItem{{ID: 1, Subject: long, StatusName: "In progress", UpdatedAt: "2025-12-03T10:00:00Z"}}
	out := RenderMarkdown(b, DefaultRules())

	require.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("a", 49)+"Ú")
	assert.NotContains(t, out, strings.Repeat("a", 49)+"Úx")
}

func TestRenderMarkdown_EmptyGroupsGetPlaceholders(t *testing.T) {
	b := testBundle(t)
	b.Items = nil
	out := RenderMarkdown(b, DefaultRules())
	assert.Contains(t, out, "_No work packages completed this week._")
	assert.Contains(t, out, "_No work packages in progress._")
	assert.Contains(t, out, "_No planned work packages._")
	assert.Contains(t, out, "_No impediments._")
	assert.Contains(t, out, "- No work packages completed yet")
	assert.Contains(t, out, "_(Planning required)_")
}

func TestRenderJSON_ShapeAndNonNilCollections(t *testing.T) {
	out, err := RenderJSON(testBundle(t), DefaultRules())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	for _, key := range []string{"project", "metrics", "work_packages", "time_entries", "members", "blockers", "relations"} {
		assert.Contains(t, decoded, key)
	}

	wps := decoded["work_packages"].(map[string]any)
	for _, key := range []string{"done", "in_progress", "planned", "blocked", "de_scoped"} {
		require.Contains(t, wps, key)
		assert.NotNil(t, wps[key], "bucket %q must be an array, not null", key)
	}

	metrics := decoded["metrics"].(map[string]any)
	assert.EqualValues(t, 3, metrics["total_wps"])
	assert.EqualValues(t, 1, metrics["done_count"])
	assert.EqualValues(t, 8, metrics["total_hours"])

	// relations were never fetched but still serialize as []
	assert.NotNil(t, decoded["relations"])
}

func TestRenderEnvelope_Metadata(t *testing.T) {
	now := time.Date(2025, 12, 9, 8, 0, 0, 0, time.UTC)
	out, err := RenderEnvelope(testBundle(t), DefaultRules(), now)
	require.NoError(t, err)

	var env struct {
		Metadata Metadata        `json:"metadata"`
		Data     json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))

	assert.Equal(t, 5, env.Metadata.ProjectID)
	assert.Equal(t, "2025-12-02", env.Metadata.FromDate)
	assert.Equal(t, "2025-12-08", env.Metadata.ToDate)
	assert.Equal(t, "2025-12-09T08:00:00Z", env.Metadata.GeneratedAt)
	assert.Equal(t, 3, env.Metadata.WorkPackagesCount)
	assert.Equal(t, 2, env.Metadata.TimeEntriesCount)
	assert.Equal(t, 2, env.Metadata.MembersCount)
	assert.NotEmpty(t, env.Data)
}
