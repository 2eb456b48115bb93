package report

import (
	"strings"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
)

// Aggregate computes report metrics from the relevant work items and the
// window's time entries. Each item increments exactly one status counter
// (via the same Rules table the grouping uses) and at most one type
// counter; the two dimensions are independent. Hours are summed into the
// total unconditionally and additionally attributed to one activity bucket
// when the activity label matches.
func Aggregate(items []domain.WorkItem, entries []domain.TimeEntry, rules *Rules) domain.Metrics {
	m := domain.Metrics{TotalWPs: len(items)}

	for _, it := range items {
		switch rules.Classify(it.StatusLabel()) {
		case domain.CategoryDone:
			m.DoneCount++
		case domain.CategoryInProgress:
			m.InProgressCount++
		case domain.CategoryBlocked:
			m.BlockedCount++
		case domain.CategoryDeScoped:
			m.DeScopedCount++
		default:
			m.PlannedCount++
		}

		typ := strings.ToLower(it.TypeLabel())
		if containsAny(typ, rules.BugTypes) {
			m.BugCount++
		} else if containsAny(typ, rules.FeatureTypes) {
			m.FeatureCount++
		}
	}

	for _, te := range entries {
		m.TotalHours += te.Hours
		activity := strings.ToLower(te.Activity)
		switch {
		case containsAny(activity, rules.DevActivities):
			m.DevHours += te.Hours
		case containsAny(activity, rules.QAActivities):
			m.QAHours += te.Hours
		case containsAny(activity, rules.ManagementActivities):
			m.ManagementHours += te.Hours
		}
	}

	return m
}
