package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	explorer "github.com/goliatone/go-datascope/components/explorer"
)

type chartRenderer interface {
	RenderChart(ctx context.Context, req explorer.ChartRequest) (explorer.ChartResult, error)
}

// ChartQuery renders one chart from the current widget state.
type ChartQuery struct {
	service chartRenderer
}

// NewChartQuery builds the query.
func NewChartQuery(service chartRenderer) *ChartQuery {
	return &ChartQuery{service: service}
}

var _ gocommand.Querier[explorer.ChartRequest, explorer.ChartResult] = (*ChartQuery)(nil)

// Query derives and renders the requested chart.
func (q *ChartQuery) Query(ctx context.Context, req explorer.ChartRequest) (explorer.ChartResult, error) {
	return q.service.RenderChart(ctx, req)
}
