package analytics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrViewNotFound is returned for unknown or released view ids.
var ErrViewNotFound = errors.New("analytics: view not found")

const defaultMaxViews = 256

// ViewFactory builds a fresh view for the given id.
type ViewFactory func(id string) (*View, error)

// ViewRegistry keeps the live views keyed by id. Each page activation owns
// its own view; the oldest view is released once the limit is reached.
type ViewRegistry struct {
	mu      sync.Mutex
	factory ViewFactory
	max     int
	views   map[string]*View
	order   []string
}

// NewViewRegistry builds a registry. A non-positive max uses the default limit.
func NewViewRegistry(factory ViewFactory, max int) *ViewRegistry {
	if max <= 0 {
		max = defaultMaxViews
	}
	return &ViewRegistry{
		factory: factory,
		max:     max,
		views:   make(map[string]*View),
	}
}

// Open creates and registers a new view.
func (r *ViewRegistry) Open() (*View, error) {
	if r.factory == nil {
		return nil, errors.New("analytics: view factory not configured")
	}
	id := uuid.NewString()
	view, err := r.factory(id)
	if err != nil {
		return nil, fmt.Errorf("analytics: open view: %w", err)
	}

	r.mu.Lock()
	var evicted []*View
	for len(r.order) >= r.max {
		oldest := r.order[0]
		r.order = r.order[1:]
		if v, ok := r.views[oldest]; ok {
			delete(r.views, oldest)
			evicted = append(evicted, v)
		}
	}
	r.views[id] = view
	r.order = append(r.order, id)
	r.mu.Unlock()

	for _, v := range evicted {
		v.Close()
	}
	return view, nil
}

// Get returns a registered view.
func (r *ViewRegistry) Get(id string) (*View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.views[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return view, nil
}

// Release closes and forgets a view. Unknown ids are ignored.
func (r *ViewRegistry) Release(id string) {
	r.mu.Lock()
	view, ok := r.views[id]
	if ok {
		delete(r.views, id)
		for i, existing := range r.order {
			if existing == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()
	if ok {
		view.Close()
	}
}

// Len reports the number of live views.
func (r *ViewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Close releases every view.
func (r *ViewRegistry) Close() {
	r.mu.Lock()
	views := make([]*View, 0, len(r.views))
	for _, v := range r.views {
		views = append(views, v)
	}
	r.views = make(map[string]*View)
	r.order = nil
	r.mu.Unlock()
	for _, v := range views {
		v.Close()
	}
}
