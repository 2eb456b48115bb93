package domain

import "strings"

// Category is the canonical status bucket a work package's free-text status
// label maps into. The set is closed; anything unrecognized resolves to
// CategoryPlanned.
type Category string

const (
	CategoryDone       Category = "done"
	CategoryInProgress Category = "in_progress"
	CategoryPlanned    Category = "planned"
	CategoryBlocked    Category = "blocked"
	CategoryDeScoped   Category = "de_scoped"
)

// WorkItem is one OpenProject work package as fetched for a report run.
// Timestamp fields keep the raw API strings; parsing happens at relevance
// filtering time so malformed values can be handled per record.
type WorkItem struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`

	// StatusName is the embedded status resource name; StatusTitle is the
	// _links.status.title fallback used only when StatusName is empty or
	// "unknown". Same pair for the type label.
	StatusName  string `json:"status"`
	StatusTitle string `json:"status_title,omitempty"`
	TypeName    string `json:"type"`
	TypeTitle   string `json:"type_title,omitempty"`

	AssigneeName string `json:"assignee,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	DueDate   string `json:"due_date,omitempty"`
	ClosedOn  string `json:"closed_on,omitempty"`
	ClosedAt  string `json:"closed_at,omitempty"`
}

// StatusLabel applies the two-tier label lookup: the embedded name first,
// the link title only if the name is missing or "unknown".
func (w WorkItem) StatusLabel() string {
	if w.StatusName == "" || strings.EqualFold(w.StatusName, "unknown") {
		return w.StatusTitle
	}
	return w.StatusName
}

// TypeLabel mirrors StatusLabel for the type resource.
func (w WorkItem) TypeLabel() string {
	if w.TypeName == "" || strings.EqualFold(w.TypeName, "unknown") {
		return w.TypeTitle
	}
	return w.TypeName
}

// TimeEntry is one logged time entry within the report window.
type TimeEntry struct {
	ID       int     `json:"id"`
	Hours    float64 `json:"hours"`
	Activity string  `json:"activity"`
	SpentOn  string  `json:"spent_on"`
	UserName string  `json:"user,omitempty"`
	Comment  string  `json:"comment,omitempty"`
}

// Member is a project membership; role metadata passes through unmodified.
type Member struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// Project is the subset of project data the report consumes. Description
// carries the raw text extracted from the API's rich-text field.
type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Identifier  string `json:"identifier,omitempty"`
	Active      bool   `json:"active,omitempty"`
	Public      bool   `json:"public,omitempty"`
	Description string `json:"description"`
	ParentID    int    `json:"parent_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Relation is a work package relation, echoed through report output.
type Relation struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
}

// Blocker is a normalized record for a work package whose status label
// marks it blocked.
type Blocker struct {
	ID       int    `json:"id"`
	Subject  string `json:"subject"`
	Assignee string `json:"assignee"`
	Status   string `json:"status"`
	Reason   string `json:"reason"`
}

// Metrics are the aggregated counters for one report run. The five status
// counters are mutually exclusive and sum to TotalWPs; the bug/feature type
// counters are additive and independent of status. Activity hour buckets
// are each a subset of TotalHours; entries matching no activity keyword
// count toward the total only.
type Metrics struct {
	TotalWPs        int     `json:"total_wps"`
	DoneCount       int     `json:"done_count"`
	InProgressCount int     `json:"in_progress_count"`
	PlannedCount    int     `json:"planned_count"`
	BlockedCount    int     `json:"blocked_count"`
	DeScopedCount   int     `json:"de_scoped_count"`
	BugCount        int     `json:"bug_count"`
	FeatureCount    int     `json:"feature_count"`
	TotalHours      float64 `json:"total_hours"`
	DevHours        float64 `json:"dev_hours"`
	QAHours         float64 `json:"qa_hours"`
	ManagementHours float64 `json:"management_hours"`
}

// GroupedItems partitions the relevant work packages by status category.
// Every relevant item lands in exactly one slice.
type GroupedItems struct {
	Done       []WorkItem `json:"done"`
	InProgress []WorkItem `json:"in_progress"`
	Planned    []WorkItem `json:"planned"`
	Blocked    []WorkItem `json:"blocked"`
	DeScoped   []WorkItem `json:"de_scoped"`
}
