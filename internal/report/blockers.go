package report

import (
	"github.com/Donekulda/openproject-mcp-server/internal/domain"
)

// BlockedReason is the fixed reason attached to every detected blocker.
const BlockedReason = "Status marked as blocked"

// RelationAnalyzer derives a blocker reason from an item and the fetched
// relation set. The default implementation ignores relations entirely;
// dependency-graph analysis is an extension point, not implemented yet.
type RelationAnalyzer interface {
	Reason(wp domain.WorkItem, relations []domain.Relation) string
}

type statusOnlyAnalyzer struct{}

func (statusOnlyAnalyzer) Reason(domain.WorkItem, []domain.Relation) string {
	return BlockedReason
}

// BlockerDetector extracts blocked work items into normalized records.
// Detection looks at the primary status field only, no link-title fallback.
type BlockerDetector struct {
	rules    *Rules
	analyzer RelationAnalyzer
}

func NewBlockerDetector(rules *Rules) *BlockerDetector {
	return &BlockerDetector{rules: rules, analyzer: statusOnlyAnalyzer{}}
}

// WithAnalyzer swaps in a custom relation analyzer.
func (d *BlockerDetector) WithAnalyzer(a RelationAnalyzer) *BlockerDetector {
	if a != nil { d.analyzer = a }
	return d
}

func (d *BlockerDetector) Detect(items []domain.WorkItem, relations []domain.Relation) []domain.Blocker {
	blockers := []domain.Blocker{}
	for _, wp := range items {
		if !d.rules.IsBlockedLabel(wp.StatusName) { continue }
		assignee := wp.AssigneeName
		if assignee == "" { assignee = "Unassigned" }
		blockers = append(blockers, domain.Blocker{
			ID:       wp.ID,
			Subject:  wp.Subject,
			Assignee: assignee,
			Status:   wp.StatusName,
			Reason:   d.analyzer.Reason(wp, relations),
		})
	}
	return blockers
}
