package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-estate-dashboard/components/analytics"
)

// ViewModelInput identifies a view.
type ViewModelInput struct {
	ViewID string
}

type viewService interface {
	ViewModel(id string) (analytics.ViewModel, error)
}

// ViewModelQuery derives the current view model of a view.
type ViewModelQuery struct {
	service viewService
}

// NewViewModelQuery builds the query.
func NewViewModelQuery(service viewService) *ViewModelQuery {
	return &ViewModelQuery{service: service}
}

var _ gocommand.Querier[ViewModelInput, analytics.ViewModel] = (*ViewModelQuery)(nil)

// Query returns the derived panels and controls.
func (q *ViewModelQuery) Query(ctx context.Context, input ViewModelInput) (analytics.ViewModel, error) {
	if err := ctx.Err(); err != nil {
		return analytics.ViewModel{}, err
	}
	return q.service.ViewModel(input.ViewID)
}
