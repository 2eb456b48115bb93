package report

import (
	"context"
	"fmt"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
	"github.com/rs/zerolog"
)

// WorkItemLister is the slice of the API client the fetcher needs.
type WorkItemLister interface {
	ListWorkPackages(ctx context.Context, projectID, offset, pageSize int) ([]domain.WorkItem, int, error)
}

// RecordFetcher drains a project's full work package collection page by
// page. Relevance filtering happens after the fetch, so every page must be
// pulled; the server-side status filter is pass-through by design.
type RecordFetcher struct {
	lister   WorkItemLister
	pageSize int
	log      zerolog.Logger
}

func NewRecordFetcher(lister WorkItemLister, pageSize int, log zerolog.Logger) *RecordFetcher {
	if pageSize <= 0 { pageSize = 500 }
	return &RecordFetcher{lister: lister, pageSize: pageSize, log: log}
}

// FetchAll pages through the collection until the reported total is covered
// or a page comes back empty. Any page failure aborts the whole fetch; a
// partial record set would silently skew every downstream number.
func (f *RecordFetcher) FetchAll(ctx context.Context, projectID int) ([]domain.WorkItem, error) {
	var all []domain.WorkItem
	offset := 0
	for {
		items, total, err := f.lister.ListWorkPackages(ctx, projectID, offset, f.pageSize)
		if err != nil { return nil, fmt.Errorf("list work packages: %w", err) }
		all = append(all, items...)
		if len(items) == 0 || offset+f.pageSize >= total {
			f.log.Debug().Int("project", projectID).Int("fetched", len(all)).Int("total", total).Msg("work package fetch complete")
			return all, nil
		}
		offset += f.pageSize
	}
}
