package report

import (
	"testing"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAggregate_StatusCountersConserveTotal(t *testing.T) {
	items := []domain.WorkItem{
		{ID: 1, StatusName: "Closed"},
		{ID: 2, StatusName: "Done"},
		{ID: 3, StatusName: "In progress"},
		{ID: 4, StatusName: "Blocked"},
		{ID: 5, StatusName: "Rejected"},
		{ID: 6, StatusName: "New"},
		{ID: 7, StatusName: ""},
		{ID: 8, StatusName: "Something exotic"},
	}
	m := Aggregate(items, nil, DefaultRules())

	assert.Equal(t, 8, m.TotalWPs)
	assert.Equal(t, 2, m.DoneCount)
	assert.Equal(t, 1, m.InProgressCount)
	assert.Equal(t, 1, m.BlockedCount)
	assert.Equal(t, 1, m.DeScopedCount)
	assert.Equal(t, 3, m.PlannedCount)

	sum := m.DoneCount + m.InProgressCount + m.PlannedCount + m.BlockedCount + m.DeScopedCount
	assert.Equal(t, m.TotalWPs, sum)
}

func TestAggregate_TypeCountersIndependentOfStatus(t *testing.T) {
	items := []domain.WorkItem{
		{ID: 1, StatusName: "Closed", TypeName: "Bug"},
		{ID: 2, StatusName: "New", TypeName: "Defect"},
		{ID: 3, StatusName: "In progress", TypeName: "Feature"},
		{ID: 4, StatusName: "New", TypeName: "User story"},
		{ID: 5, StatusName: "New", TypeName: "Task"},
		{ID: 6, StatusName: "New", TypeName: "Milestone"},
	}
	m := Aggregate(items, nil, DefaultRules())

	assert.Equal(t, 2, m.BugCount)
	assert.Equal(t, 3, m.FeatureCount)
}

func TestAggregate_HoursByActivity(t *testing.T) {
	entries := []domain.TimeEntry{
		{ID: 1, Hours: 8, Activity: "Development"},
		{ID: 2, Hours: 2.5, Activity: "Testing"},
		{ID: 3, Hours: 1, Activity: "QA review"},
		{ID: 4, Hours: 3, Activity: "Management"},
		{ID: 5, Hours: 1.5, Activity: "Meeting"},
		{ID: 6, Hours: 4, Activity: "Design"},
	}
	m := Aggregate(nil, entries, DefaultRules())

	assert.InDelta(t, 20.0, m.TotalHours, 1e-9)
	assert.InDelta(t, 8.0, m.DevHours, 1e-9)
	assert.InDelta(t, 3.5, m.QAHours, 1e-9)
	assert.InDelta(t, 4.5, m.ManagementHours, 1e-9)
	// the Design entry counts toward the total only
	assert.Greater(t, m.TotalHours, m.DevHours+m.QAHours+m.ManagementHours)
}

func TestAggregate_Empty(t *testing.T) {
	m := Aggregate(nil, nil, DefaultRules())
	assert.Equal(t, 0, m.TotalWPs)
	assert.Zero(t, m.TotalHours)
}
