package report

import (
	"os"
	"strings"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Rules is the single canonical keyword table for free-text classification.
// Grouping, metrics aggregation, blocker detection, and the relevance
// filter's closed-status check all consume this table; category membership
// is never re-derived anywhere else.
//
// Matching is substring, case-insensitive, priority-ordered:
// done > in_progress > blocked > de_scoped > planned; anything unmatched
// (including empty and "unknown" labels) falls back to planned.
type Rules struct {
	Done       []string `yaml:"done"`
	InProgress []string `yaml:"in_progress"`
	Blocked    []string `yaml:"blocked"`
	DeScoped   []string `yaml:"de_scoped"`
	Planned    []string `yaml:"planned"`

	BugTypes     []string `yaml:"bug_types"`
	FeatureTypes []string `yaml:"feature_types"`

	DevActivities        []string `yaml:"dev_activities"`
	QAActivities         []string `yaml:"qa_activities"`
	ManagementActivities []string `yaml:"management_activities"`
}

func DefaultRules() *Rules {
	return &Rules{
		Done:       []string{"closed", "done", "resolved", "completed", "finished"},
		InProgress: []string{"progress", "development", "implementing"},
		Blocked:    []string{"blocked"},
		DeScoped:   []string{"rejected", "cancelled"},
		Planned:    []string{"new", "open", "specified", "to do"},

		BugTypes:     []string{"bug", "defect"},
		FeatureTypes: []string{"feature", "story", "task"},

		DevActivities:        []string{"development", "implement"},
		QAActivities:         []string{"test", "qa"},
		ManagementActivities: []string{"management", "meeting"},
	}
}

// LoadRules returns the defaults, overlaid with any non-empty keyword lists
// from a YAML rules file when one is configured.
func LoadRules(path string, log zerolog.Logger) *Rules {
	rules := DefaultRules()
	if path == "" { return rules }
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("classifier rules file not readable; using defaults")
		return rules
	}
	var file Rules
	if err := yaml.Unmarshal(data, &file); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("classifier rules file invalid; using defaults")
		return rules
	}
	overlay := func(dst *[]string, src []string) {
		if len(src) > 0 { *dst = src }
	}
	overlay(&rules.Done, file.Done)
	overlay(&rules.InProgress, file.InProgress)
	overlay(&rules.Blocked, file.Blocked)
	overlay(&rules.DeScoped, file.DeScoped)
	overlay(&rules.Planned, file.Planned)
	overlay(&rules.BugTypes, file.BugTypes)
	overlay(&rules.FeatureTypes, file.FeatureTypes)
	overlay(&rules.DevActivities, file.DevActivities)
	overlay(&rules.QAActivities, file.QAActivities)
	overlay(&rules.ManagementActivities, file.ManagementActivities)
	log.Info().Str("path", path).Msg("classifier rules loaded")
	return rules
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) { return true }
	}
	return false
}

// Classify maps a free-text status label to its canonical category.
func (r *Rules) Classify(label string) domain.Category {
	l := strings.ToLower(label)
	if l == "" || l == "unknown" { return domain.CategoryPlanned }
	switch {
	case containsAny(l, r.Done):
		return domain.CategoryDone
	case containsAny(l, r.InProgress):
		return domain.CategoryInProgress
	case containsAny(l, r.Blocked):
		return domain.CategoryBlocked
	case containsAny(l, r.DeScoped):
		return domain.CategoryDeScoped
	case containsAny(l, r.Planned):
		return domain.CategoryPlanned
	default:
		return domain.CategoryPlanned
	}
}

// IsClosedLabel reports whether a status label reads as closed-type work.
// The keyword set is the done group; the relevance filter uses this for its
// recently-closed window check and its conservative-inclusion policy.
func (r *Rules) IsClosedLabel(label string) bool {
	return containsAny(strings.ToLower(label), r.Done)
}

// IsBlockedLabel reports whether a status label marks the item blocked.
func (r *Rules) IsBlockedLabel(label string) bool {
	return containsAny(strings.ToLower(label), r.Blocked)
}

// GroupByStatus partitions work items into the five canonical buckets.
// Slices are always non-nil so the JSON rendering emits [] over null.
func GroupByStatus(items []domain.WorkItem, rules *Rules) domain.GroupedItems {
	g := domain.GroupedItems{
		Done:       []domain.WorkItem{},
		InProgress: []domain.WorkItem{},
		Planned:    []domain.WorkItem{},
		Blocked:    []domain.WorkItem{},
		DeScoped:   []domain.WorkItem{},
	}
	for _, it := range items {
		switch rules.Classify(it.StatusLabel()) {
		case domain.CategoryDone:
			g.Done = append(g.Done, it)
		case domain.CategoryInProgress:
			g.InProgress = append(g.InProgress, it)
		case domain.CategoryBlocked:
			g.Blocked = append(g.Blocked, it)
		case domain.CategoryDeScoped:
			g.DeScoped = append(g.DeScoped, it)
		default:
			g.Planned = append(g.Planned, it)
		}
	}
	return g
}
