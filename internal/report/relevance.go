package report

import (
	"time"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
	"github.com/rs/zerolog"
)

// RelevanceFilter decides, per work item, whether it belongs to a report
// window. The upstream API has no "closed during window" query, so the
// filter runs client-side over the complete record set.
type RelevanceFilter struct {
	rules *Rules
	log   zerolog.Logger
}

func NewRelevanceFilter(rules *Rules, log zerolog.Logger) *RelevanceFilter {
	return &RelevanceFilter{rules: rules, log: log}
}

// Relevant applies a priority cascade, short-circuiting on first match:
//  1. updatedAt inside [from, to]
//  2. createdAt inside [from, to]
//  3. closed-type status label AND updatedAt inside [to-30d, to]
//  4. explicit closedOn/closedAt inside [from, to]
//
// If any timestamp fails to parse, the item is included only when its
// label matches the closed-type set. That deliberately biases toward not
// dropping completed work at the cost of possible false positives for
// malformed records.
func (f *RelevanceFilter) Relevant(wp domain.WorkItem, w Window) bool {
	isClosed := f.rules.IsClosedLabel(wp.StatusLabel())

	var updatedAt time.Time
	haveUpdated := false
	if wp.UpdatedAt != "" {
		t, err := parseNaiveUTC(wp.UpdatedAt)
		if err != nil { return f.conservative(wp, "updatedAt", err, isClosed) }
		updatedAt = t
		haveUpdated = true
		if w.Contains(t) { return true }
	}
	if wp.CreatedAt != "" {
		t, err := parseNaiveUTC(wp.CreatedAt)
		if err != nil { return f.conservative(wp, "createdAt", err, isClosed) }
		if w.Contains(t) { return true }
	}
	if isClosed && haveUpdated && w.ContainsRecentlyClosed(updatedAt) {
		return true
	}
	closedDate := wp.ClosedOn
	if closedDate == "" { closedDate = wp.ClosedAt }
	if closedDate != "" {
		t, err := parseNaiveUTC(closedDate)
		if err != nil { return f.conservative(wp, "closedOn", err, isClosed) }
		if w.Contains(t) { return true }
	}
	return false
}

func (f *RelevanceFilter) conservative(wp domain.WorkItem, field string, err error, isClosed bool) bool {
	f.log.Warn().Err(err).Int("wp", wp.ID).Str("field", field).Bool("included", isClosed).
		Msg("work package timestamp unparseable; applying conservative inclusion")
	return isClosed
}
