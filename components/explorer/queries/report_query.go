package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	explorer "github.com/goliatone/go-datascope/components/explorer"
)

// ReportInput requests the overview report; it carries no parameters
// because the report always reflects the current dataset.
type ReportInput struct{}

type reporter interface {
	Report(ctx context.Context) (explorer.Report, error)
}

// ReportQuery fetches the overview metrics and summary views.
type ReportQuery struct {
	service reporter
}

// NewReportQuery builds the query.
func NewReportQuery(service reporter) *ReportQuery {
	return &ReportQuery{service: service}
}

var _ gocommand.Querier[ReportInput, explorer.Report] = (*ReportQuery)(nil)

// Query assembles the report for the loaded dataset.
func (q *ReportQuery) Query(ctx context.Context, _ ReportInput) (explorer.Report, error) {
	return q.service.Report(ctx)
}
