package openproject

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Donekulda/openproject-mcp-server/internal/config"
	"github.com/Donekulda/openproject-mcp-server/internal/domain"
	"github.com/rs/zerolog"
)

// Client talks to the OpenProject API v3. Responses are HAL documents;
// collections arrive as envelopes with a server-reported total and an
// _embedded.elements list.
type Client struct {
	baseURL string
	apiKey  string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.OPBaseURL,
		apiKey:  cfg.OPAPIKey,
		token:   cfg.OPAccessToken,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
		log:     log,
	}
}

func (c *Client) apiURL(path string, q url.Values) string {
	base := strings.TrimRight(c.baseURL, "/")
	if !strings.HasPrefix(path, "/") { path = "/" + path }
	u := base + path
	if len(q) > 0 { u = u + "?" + q.Encode() }
	return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any, out any) error {
	if c.baseURL == "" { return errors.New("openproject: empty baseURL") }
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil { return err }
		payload = b
	}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var r io.Reader
		if payload != nil { r = bytes.NewReader(payload) }
		req, err := http.NewRequestWithContext(ctx, method, u, r)
		if err != nil { return err }
		if payload != nil { req.Header.Set("Content-Type", "application/json") }
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		} else if c.apiKey != "" {
			// API key auth is basic auth with the literal user "apikey"
			req.SetBasicAuth("apikey", c.apiKey)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			b, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode >= 300 {
				apiErr := fmt.Errorf("openproject api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
				// retry on 429/5xx only
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					lastErr = apiErr
				} else {
					return apiErr
				}
			} else {
				return json.Unmarshal(b, out)
			}
		}
		// backoff before the next attempt only
		if attempt < 2 {
			time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
		}
	}
	return lastErr
}

// ---- wire types ----

type richText struct {
	Raw string `json:"raw"`
}

type halLink struct {
	Href  string `json:"href"`
	Title string `json:"title"`
}

type projectResource struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Identifier  string   `json:"identifier"`
	Active      bool     `json:"active"`
	Public      bool     `json:"public"`
	Description richText `json:"description"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	Links       struct {
		Parent halLink `json:"parent"`
	} `json:"_links"`
}

type workPackageResource struct {
	ID        int    `json:"id"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	DueDate   string `json:"dueDate"`
	ClosedOn  string `json:"closedOn"`
	ClosedAt  string `json:"closedAt"`
	Embedded  struct {
		Status   struct{ Name string `json:"name"` } `json:"status"`
		Type     struct{ Name string `json:"name"` } `json:"type"`
		Assignee struct{ Name string `json:"name"` } `json:"assignee"`
	} `json:"_embedded"`
	Links struct {
		Status   halLink `json:"status"`
		Type     halLink `json:"type"`
		Assignee halLink `json:"assignee"`
	} `json:"_links"`
}

type membershipResource struct {
	Links struct {
		Principal halLink   `json:"principal"`
		Roles     []halLink `json:"roles"`
	} `json:"_links"`
}

type timeEntryResource struct {
	ID       int             `json:"id"`
	Hours    json.RawMessage `json:"hours"`
	SpentOn  string          `json:"spentOn"`
	Comment  richText        `json:"comment"`
	Embedded struct {
		Activity struct{ Name string `json:"name"` } `json:"activity"`
	} `json:"_embedded"`
	Links struct {
		Activity halLink `json:"activity"`
		User     halLink `json:"user"`
	} `json:"_links"`
}

type relationResource struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Links       struct {
		From halLink `json:"from"`
		To   halLink `json:"to"`
	} `json:"_links"`
}

type collection[T any] struct {
	Total    int `json:"total"`
	Count    int `json:"count"`
	Embedded struct {
		Elements []T `json:"elements"`
	} `json:"_embedded"`
}

// ---- mapping ----

func mapProject(p projectResource) domain.Project {
	return domain.Project{
		ID:          p.ID,
		Name:        p.Name,
		Identifier:  p.Identifier,
		Active:      p.Active,
		Public:      p.Public,
		Description: p.Description.Raw,
		ParentID:    idFromHref(p.Links.Parent.Href),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func mapWorkPackage(wp workPackageResource) domain.WorkItem {
	return domain.WorkItem{
		ID:           wp.ID,
		Subject:      wp.Subject,
		StatusName:   wp.Embedded.Status.Name,
		StatusTitle:  wp.Links.Status.Title,
		TypeName:     wp.Embedded.Type.Name,
		TypeTitle:    wp.Links.Type.Title,
		AssigneeName: firstNonEmpty(wp.Embedded.Assignee.Name, wp.Links.Assignee.Title),
		CreatedAt:    wp.CreatedAt,
		UpdatedAt:    wp.UpdatedAt,
		DueDate:      wp.DueDate,
		ClosedOn:     wp.ClosedOn,
		ClosedAt:     wp.ClosedAt,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" { return a }
	return b
}

// idFromHref extracts the numeric id from a HAL href like /api/v3/projects/12.
func idFromHref(href string) int {
	if href == "" { return 0 }
	parts := strings.Split(strings.TrimRight(href, "/"), "/")
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil { return 0 }
	return n
}

// parseHours accepts either a JSON number or an ISO 8601 duration string
// like "PT7H30M" (what the API actually returns) and yields decimal hours.
func parseHours(raw json.RawMessage) float64 {
	if len(raw) == 0 { return 0 }
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil { return f }
	var s string
	if err := json.Unmarshal(raw, &s); err != nil { return 0 }
	return isoDurationHours(s)
}

func isoDurationHours(s string) float64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "P") { return 0 }
	s = s[1:]
	var hours float64
	inTime := false
	num := ""
	for _, r := range s {
		switch {
		case r == 'T':
			inTime = true
		case r >= '0' && r <= '9' || r == '.':
			num += string(r)
		default:
			v, err := strconv.ParseFloat(num, 64)
			num = ""
			if err != nil { continue }
			switch r {
			case 'D':
				hours += v * 24
			case 'H':
				if inTime { hours += v }
			case 'M':
				if inTime { hours += v / 60 }
			case 'S':
				if inTime { hours += v / 3600 }
			case 'W':
				hours += v * 24 * 7
			}
		}
	}
	return hours
}

// ---- API operations ----

func (c *Client) GetProject(ctx context.Context, id int) (domain.Project, error) {
	var p projectResource
	u := c.apiURL("/api/v3/projects/"+strconv.Itoa(id), nil)
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &p); err != nil {
		return domain.Project{}, err
	}
	return mapProject(p), nil
}

func (c *Client) ListProjects(ctx context.Context, activeOnly bool) ([]domain.Project, error) {
	q := url.Values{}
	if activeOnly { q.Set("filters", ActiveProjectsFilter()) }
	u := c.apiURL("/api/v3/projects", q)
	var col collection[projectResource]
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &col); err != nil { return nil, err }
	out := make([]domain.Project, 0, len(col.Embedded.Elements))
	for _, p := range col.Embedded.Elements { out = append(out, mapProject(p)) }
	return out, nil
}

// ListWorkPackages returns one page of a project's work packages plus the
// server-reported total. The all-statuses filter is always applied; the
// API's default would hide closed work packages.
func (c *Client) ListWorkPackages(ctx context.Context, projectID, offset, pageSize int) ([]domain.WorkItem, int, error) {
	q := url.Values{}
	q.Set("filters", StatusAllFilter())
	q.Set("offset", strconv.Itoa(offset))
	q.Set("pageSize", strconv.Itoa(pageSize))
	u := c.apiURL("/api/v3/projects/"+strconv.Itoa(projectID)+"/work_packages", q)
	var col collection[workPackageResource]
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &col); err != nil { return nil, 0, err }
	out := make([]domain.WorkItem, 0, len(col.Embedded.Elements))
	for _, wp := range col.Embedded.Elements { out = append(out, mapWorkPackage(wp)) }
	return out, col.Total, nil
}

func (c *Client) ListMemberships(ctx context.Context, projectID int) ([]domain.Member, error) {
	q := url.Values{}
	q.Set("filters", marshalFilters([]map[string]predicate{
		{"project": {Operator: "=", Values: []string{strconv.Itoa(projectID)}}},
	}))
	u := c.apiURL("/api/v3/memberships", q)
	var col collection[membershipResource]
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &col); err != nil { return nil, err }
	out := make([]domain.Member, 0, len(col.Embedded.Elements))
	for _, m := range col.Embedded.Elements {
		roles := make([]string, 0, len(m.Links.Roles))
		for _, r := range m.Links.Roles {
			if r.Title != "" { roles = append(roles, r.Title) }
		}
		out = append(out, domain.Member{Name: m.Links.Principal.Title, Roles: roles})
	}
	return out, nil
}

func (c *Client) ListTimeEntries(ctx context.Context, projectID int, from, to string) ([]domain.TimeEntry, error) {
	q := url.Values{}
	q.Set("filters", TimeEntriesFilter(projectID, from, to))
	u := c.apiURL("/api/v3/time_entries", q)
	var col collection[timeEntryResource]
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &col); err != nil { return nil, err }
	out := make([]domain.TimeEntry, 0, len(col.Embedded.Elements))
	for _, te := range col.Embedded.Elements {
		out = append(out, domain.TimeEntry{
			ID:       te.ID,
			Hours:    parseHours(te.Hours),
			Activity: firstNonEmpty(te.Embedded.Activity.Name, te.Links.Activity.Title),
			SpentOn:  te.SpentOn,
			UserName: te.Links.User.Title,
			Comment:  te.Comment.Raw,
		})
	}
	return out, nil
}

func (c *Client) ListRelations(ctx context.Context, workPackageID int) ([]domain.Relation, error) {
	u := c.apiURL("/api/v3/work_packages/"+strconv.Itoa(workPackageID)+"/relations", nil)
	var col collection[relationResource]
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &col); err != nil { return nil, err }
	out := make([]domain.Relation, 0, len(col.Embedded.Elements))
	for _, r := range col.Embedded.Elements {
		out = append(out, domain.Relation{
			ID:          r.ID,
			Type:        r.Type,
			Description: r.Description,
			From:        r.Links.From.Title,
			To:          r.Links.To.Title,
		})
	}
	return out, nil
}
