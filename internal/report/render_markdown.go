package report

import (
	"fmt"
	"strings"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
)

// Bundle carries everything a render call needs, already fetched, filtered
// and analyzed. Both renderers are pure over this value.
type Bundle struct {
	Project     domain.Project
	Items       []domain.WorkItem
	TimeEntries []domain.TimeEntry
	Members     []domain.Member
	Relations   []domain.Relation
	Window      Window

	SprintGoal string
	TeamName   string
}

// statusIndicator derives the overall health line. Any blocked work is off
// track; otherwise finishing less than is in flight reads as at risk.
func statusIndicator(m domain.Metrics) string {
	if m.BlockedCount > 0 { return "🔴 Off track" }
	if m.DoneCount < m.InProgressCount { return "🟡 At risk" }
	return "🟢 On track"
}

// truncate limits s to max characters, not bytes, so multi-byte runes are
// never split.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) > max { return string(r[:max]) }
	return s
}

func orDefault(s, def string) string {
	if s == "" { return def }
	return s
}

// workItemRow renders one table row. The date column prefers the explicit
// due date and falls back to the day the item was last touched.
func workItemRow(wp domain.WorkItem) string {
	updated := "N/A"
	if wp.UpdatedAt != "" {
		if t, err := parseNaiveUTC(wp.UpdatedAt); err == nil { updated = t.Format(dateLayout) }
	}
	date := wp.DueDate
	if date == "" { date = updated }
	return fmt.Sprintf("| [%s #%d] | %s | %s | %s | %s |",
		orDefault(wp.TypeLabel(), "Task"), wp.ID,
		truncate(orDefault(wp.Subject, "No subject"), 50),
		orDefault(wp.AssigneeName, "Unassigned"),
		date, orDefault(wp.StatusLabel(), "Unknown"))
}

// RenderMarkdown produces the full weekly report document. Section order
// and headings are fixed; only the de-scoped subsection and the time
// distribution table are conditional.
func RenderMarkdown(b Bundle, rules *Rules) string {
	metrics := Aggregate(b.Items, b.TimeEntries, rules)
	grouped := GroupByStatus(b.Items, rules)
	blockers := NewBlockerDetector(rules).Detect(b.Items, b.Relations)
	status := statusIndicator(metrics)

	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	line("# WEEKLY REPORT - AGILE SCRUM\n")
	line("*Automatically generated from OpenProject*\n")

	line("## A. GENERAL INFORMATION\n")
	line("| Report Week | Value |")
	line("|-------------|-------|")
	line("| From Date - To Date | %s - %s |", b.Window.FromDate(), b.Window.ToDate())
	line("| Team/Squad | %s |", orDefault(b.TeamName, "N/A"))
	line("| Product/Module | %s |", orDefault(b.Project.Name, "N/A"))
	line("| Project ID | #%d |", b.Project.ID)
	line("| Sprint Goal | %s |", orDefault(b.SprintGoal, "N/A"))
	line("")

	line("## B. EXECUTIVE SUMMARY\n")
	line("**Progress vs Sprint Goal:** %s\n", status)
	line("**Key Deliverables (Done):**")
	if len(grouped.Done) > 0 {
		for i, wp := range grouped.Done {
			if i == 3 { break }
			line("%d. #%d - %s", i+1, wp.ID, orDefault(wp.Subject, "N/A"))
		}
	} else {
		line("- No work packages completed yet")
	}
	line("")
	if len(blockers) > 0 {
		line("**Main Impediment:** %d work package(s) currently blocked\n", len(blockers))
	} else {
		line("**Main Impediment:** None\n")
	}
	line("**Support Needed/Decisions:** _(Requires manual update)_\n")

	line("## C. DELIVERY & BACKLOG MOVEMENT\n")
	line("### 1) Completed Work (Done)\n")
	if len(grouped.Done) > 0 {
		line("| Ticket/Story | Short Description | Owner | Done Date | Status |")
		line("|--------------|-------------------|-------|-----------|--------|")
		for _, wp := range grouped.Done { line("%s", workItemRow(wp)) }
	} else {
		line("_No work packages completed this week._")
	}
	line("")

	line("### 2) Work In Progress\n")
	if len(grouped.InProgress) > 0 {
		line("| Ticket/Story | Short Description | Owner | ETA | Status |")
		line("|--------------|-------------------|-------|-----|--------|")
		for _, wp := range grouped.InProgress { line("%s", workItemRow(wp)) }
	} else {
		line("_No work packages in progress._")
	}
	line("")

	line("### 3) Planned Work (Not Started)\n")
	if len(grouped.Planned) > 0 {
		line("| Ticket/Story | Short Description | Owner | ETA | Status |")
		line("|--------------|-------------------|-------|-----|--------|")
		for _, wp := range grouped.Planned { line("%s", workItemRow(wp)) }
	} else {
		line("_No planned work packages._")
	}
	line("")

	if len(grouped.DeScoped) > 0 {
		line("### 4) De-scoped Work (Stopped/Reprioritized)\n")
		line("| Ticket | Reason | Status |")
		line("|--------|--------|--------|")
		for _, wp := range grouped.DeScoped {
			line("| #%d %s | _(Requires update)_ | %s |",
				wp.ID, truncate(orDefault(wp.Subject, "No subject"), 40), orDefault(wp.StatusLabel(), "Unknown"))
		}
		line("")
	}

	line("## D. RESOURCES & EXECUTION CAPACITY\n")
	line("**Team Size:** %d member(s)\n", len(b.Members))
	line("**Weekly Capacity:** %.1f person-hours\n", metrics.TotalHours)
	line("**Staff Changes:** _(Requires manual update)_\n")
	if metrics.TotalHours > 0 {
		line("**Time Distribution by Activity Type:**\n")
		line("| Type | Hours | %% |")
		line("|------|-------|---|")
		line("| Development | %.1f | %.1f%% |", metrics.DevHours, metrics.DevHours/metrics.TotalHours*100)
		line("| QA/Testing | %.1f | %.1f%% |", metrics.QAHours, metrics.QAHours/metrics.TotalHours*100)
		line("| Management | %.1f | %.1f%% |", metrics.ManagementHours, metrics.ManagementHours/metrics.TotalHours*100)
		line("")
	}

	line("## E. IMPEDIMENTS & DEPENDENCIES\n")
	if len(blockers) > 0 {
		line("### Impediments (Direct Blockers)\n")
		line("| Description | Severity | Owner Handling | Status |")
		line("|------------|----------|----------------|--------|")
		for _, bl := range blockers {
			line("| #%d %s | High | %s | %s |", bl.ID, truncate(bl.Subject, 40), bl.Assignee, bl.Status)
		}
		line("")
	} else {
		line("_No impediments._\n")
	}

	line("## F. QUALITY & SYSTEM STABILITY\n")
	line("**Bugs Created This Week:** %d\n", metrics.BugCount)
	line("**Bugs Closed This Week:** _(Requires further analysis)_\n")
	line("**Test Coverage:** _(Requires manual update)_\n")
	line("**Incident/Outage:** _(Requires manual update)_\n")

	line("## G. NEXT WEEK PLAN\n")
	line("**Top Priorities:**")
	if len(grouped.Planned) > 0 {
		for i, wp := range grouped.Planned {
			if i == 5 { break }
			line("%d. #%d %s (%s - ETA: %s)", i+1, wp.ID, orDefault(wp.Subject, "N/A"),
				orDefault(wp.AssigneeName, "Unassigned"), orDefault(wp.DueDate, "TBD"))
		}
	} else {
		line("_(Planning required)_")
	}
	line("")

	line("## H. SPRINT HEALTH & IMPROVEMENTS\n")
	line("**What Went Well:** _(Requires update from retro)_\n")
	line("**What Needs Improvement:** _(Requires update from retro)_\n")
	line("**Action Items:** _(Requires update from retro)_\n")

	line("---\n")
	line("## APPENDIX: EXECUTIVE SUMMARY FOR LEADERSHIP\n")
	line("**Status:** %s", status)
	line("**Done:** %d work packages", metrics.DoneCount)
	line("**In progress:** %d work packages", metrics.InProgressCount)
	line("**Planned:** %d work packages", metrics.PlannedCount)
	line("**Main blockers:** %d blocked items", len(blockers))
	line("**Hours logged:** %.1fh", metrics.TotalHours)

	return sb.String()
}
