package openproject

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// OpenProject API v3 filter expressions are serialized JSON predicates:
// an array of single-key objects {"field": {"operator": op, "values": [...]}}.

type predicate struct {
	Operator string   `json:"operator"`
	Values   []string `json:"values"`
}

// marshalFilters keeps operators like "<>d" literal; the default
// marshaler HTML-escapes angle brackets.
func marshalFilters(filters []map[string]predicate) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(filters)
	return strings.TrimRight(buf.String(), "\n")
}

// StatusAllFilter selects every status, including closed. Without it the
// work package listing defaults to open items only, which would silently
// drop completed work from reports.
func StatusAllFilter() string {
	return marshalFilters([]map[string]predicate{
		{"status": {Operator: "*", Values: []string{}}},
	})
}

// TimeEntriesFilter selects entries spent within [from, to] for one project.
func TimeEntriesFilter(projectID int, from, to string) string {
	return marshalFilters([]map[string]predicate{
		{"spentOn": {Operator: "<>d", Values: []string{from, to}}},
		{"project": {Operator: "=", Values: []string{strconv.Itoa(projectID)}}},
	})
}

// ActiveProjectsFilter selects active projects only.
func ActiveProjectsFilter() string {
	return marshalFilters([]map[string]predicate{
		{"active": {Operator: "=", Values: []string{"t"}}},
	})
}
