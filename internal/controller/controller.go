// Package controller implements the paginated filtered list controller shared
// by the review console views: query state, sequenced page fetching with
// stale-response discard, single-record selection, and a precondition-gated
// action dispatcher.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultPageSize is used when a Config does not set one.
const DefaultPageSize = 10

var (
	// ErrStale reports that a fetch result was superseded by a newer request
	// and has been discarded without touching controller state.
	ErrStale = errors.New("stale response discarded")

	// ErrNoSelection reports a Dispatch without a selected record.
	ErrNoSelection = errors.New("no record selected")

	// ErrActionNotAllowed reports a Dispatch whose precondition on the
	// selected record's status does not hold.
	ErrActionNotAllowed = errors.New("action not available for record status")

	// ErrBusy reports a Dispatch while another action is still in flight.
	ErrBusy = errors.New("action already in flight")
)

// Record is the minimal shape the controller needs from a list entry.
type Record interface {
	RecordID() string
	RecordStatus() string
}

// Query holds the current filter values and page position.
type Query struct {
	Filters  map[string]string
	Page     int
	PageSize int
}

func (q Query) clone() Query {
	out := q
	out.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}

// PageResult is one server-paginated batch of records plus the pagination
// totals the server computed. It fully replaces the previous result on apply.
type PageResult[T Record] struct {
	Records    []T
	Total      int64
	TotalPages int
	Page       int
}

// Fetch identifies one issued page load. Seq orders it against every other
// load issued by the same controller; Query is the snapshot to execute.
type Fetch struct {
	Seq   uint64
	Query Query
}

// Search identifies one issued free-text search.
type Search struct {
	Seq   uint64
	Query string
}

// Action is one state-changing command in the controller's immutable action
// table. Do receives the selected record's id and the (validated) argument.
type Action[T Record] struct {
	Name          string
	AllowedStatus []string
	ArgName       string // non-empty means a required, non-blank argument
	Do            func(ctx context.Context, id, arg string) error
}

func (a Action[T]) allowed(status string) bool {
	if len(a.AllowedStatus) == 0 {
		return true
	}
	for _, s := range a.AllowedStatus {
		if s == status {
			return true
		}
	}
	return false
}

// Config parameterizes a controller by record shape, filter set, and actions.
type Config[T Record] struct {
	PageSize int
	Actions  []Action[T]
}

// Controller owns the query state, the last applied page result, and the
// selection for one list view. All methods are safe for concurrent use so
// completion callbacks may run off the event loop.
type Controller[T Record] struct {
	mu sync.Mutex

	query   Query
	actions map[string]Action[T]

	seq      uint64 // latest issued fetch/search sequence
	loading  bool
	busy     bool // an action dispatch is in flight
	lastErr  error
	page     PageResult[T]
	selected string
}

// New creates a controller from an immutable configuration.
func New[T Record](cfg Config[T]) (*Controller[T], error) {
	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 0 {
		return nil, fmt.Errorf("invalid page size %d", pageSize)
	}

	actions := make(map[string]Action[T], len(cfg.Actions))
	for _, a := range cfg.Actions {
		if a.Name == "" {
			return nil, errors.New("action name is required")
		}
		if a.Do == nil {
			return nil, fmt.Errorf("action %q has no handler", a.Name)
		}
		if _, dup := actions[a.Name]; dup {
			return nil, fmt.Errorf("duplicate action %q", a.Name)
		}
		actions[a.Name] = a
	}

	return &Controller[T]{
		query: Query{
			Filters:  make(map[string]string),
			Page:     1,
			PageSize: pageSize,
		},
		actions: actions,
	}, nil
}

// SetFilter sets a filter value and resets the page to 1. An empty value
// removes the filter.
func (c *Controller[T]) SetFilter(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value == "" {
		delete(c.query.Filters, name)
	} else {
		c.query.Filters[name] = value
	}
	c.query.Page = 1
}

// Filter returns the current value for a filter, or "" when unset.
func (c *Controller[T]) Filter(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Filters[name]
}

// GoToPage moves to page n. Out-of-range targets are a silent no-op: no state
// change and no fetch should be issued for them. Returns whether the page
// changed.
func (c *Controller[T]) GoToPage(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 1 || n > c.totalPagesLocked() || n == c.query.Page {
		return false
	}
	c.query.Page = n
	return true
}

// totalPagesLocked reports the navigable page count. Before the first fetch
// only page 1 exists.
func (c *Controller[T]) totalPagesLocked() int {
	if c.page.TotalPages < 1 {
		return 1
	}
	return c.page.TotalPages
}

// BeginFetch issues a new page load for the current query state. The returned
// Fetch carries the sequence number its result must present to ApplyFetch.
// A newer BeginFetch supersedes all earlier outstanding ones.
func (c *Controller[T]) BeginFetch() Fetch {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.loading = true
	return Fetch{Seq: c.seq, Query: c.query.clone()}
}

// ApplyFetch installs a completed page load. Results whose sequence number is
// not the latest issued are discarded and reported as ErrStale. On a fetch
// failure the previous page result is retained and the error kept for Err.
func (c *Controller[T]) ApplyFetch(seq uint64, res PageResult[T], err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return ErrStale
	}
	c.loading = false

	if err != nil {
		c.lastErr = err
		return nil
	}

	c.page = res
	// The server may clamp an out-of-range page; its answer is authoritative.
	if res.Page >= 1 {
		c.query.Page = res.Page
	}
	c.selected = ""
	c.lastErr = nil
	return nil
}

// BeginSearch issues a free-text search. Search results share the fetch
// sequence space, so a later page load supersedes an outstanding search and
// vice versa.
func (c *Controller[T]) BeginSearch(query string) Search {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.loading = true
	return Search{Seq: c.seq, Query: query}
}

// ApplySearch installs a completed search. The result replaces the page,
// unpaginated.
func (c *Controller[T]) ApplySearch(seq uint64, records []T, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return ErrStale
	}
	c.loading = false

	if err != nil {
		c.lastErr = err
		return nil
	}

	c.page = PageResult[T]{
		Records:    records,
		Total:      int64(len(records)),
		TotalPages: 1,
		Page:       1,
	}
	c.query.Page = 1
	c.selected = ""
	c.lastErr = nil
	return nil
}

// Loading reports whether a fetch or search is outstanding.
func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error from the most recent completed fetch or search, or
// nil after a success.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Page returns the last applied page result.
func (c *Controller[T]) Page() PageResult[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Query returns a snapshot of the current query state.
func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.clone()
}

// Select marks the record with the given id as selected. Selecting the
// already-selected record is a no-op; selecting a different one replaces the
// previous selection. Returns whether the selection changed.
func (c *Controller[T]) Select(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == c.selected {
		return false
	}
	for _, rec := range c.page.Records {
		if rec.RecordID() == id {
			c.selected = id
			return true
		}
	}
	return false
}

// Selected returns the currently selected record, if any.
func (c *Controller[T]) Selected() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLocked()
}

func (c *Controller[T]) selectedLocked() (T, bool) {
	var zero T
	if c.selected == "" {
		return zero, false
	}
	for _, rec := range c.page.Records {
		if rec.RecordID() == c.selected {
			return rec, true
		}
	}
	return zero, false
}

// ClearSelection closes the detail view.
func (c *Controller[T]) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = ""
}

// Available reports the actions whose status precondition holds for the given
// record, in no particular order. Actions not listed must not be offered.
func (c *Controller[T]) Available(rec T) []string {
	names := make([]string, 0, len(c.actions))
	for name, a := range c.actions {
		if a.allowed(rec.RecordStatus()) {
			names = append(names, name)
		}
	}
	return names
}

// Dispatch runs a state-changing action against the selected record. The
// argument is validated locally before any remote call: actions declaring an
// ArgName refuse a blank argument. On success the selection is closed and a
// refetch of the current page is issued; its Fetch is returned for the caller
// to execute. On failure the selection and page are unchanged.
func (c *Controller[T]) Dispatch(ctx context.Context, name, arg string) (Fetch, error) {
	c.mu.Lock()

	action, ok := c.actions[name]
	if !ok {
		c.mu.Unlock()
		return Fetch{}, fmt.Errorf("unknown action %q", name)
	}
	if c.busy {
		c.mu.Unlock()
		return Fetch{}, ErrBusy
	}

	rec, selected := c.selectedLocked()
	if !selected {
		c.mu.Unlock()
		return Fetch{}, ErrNoSelection
	}
	if !action.allowed(rec.RecordStatus()) {
		c.mu.Unlock()
		return Fetch{}, ErrActionNotAllowed
	}

	arg = strings.TrimSpace(arg)
	if action.ArgName != "" && arg == "" {
		c.mu.Unlock()
		return Fetch{}, fmt.Errorf("%s is required", action.ArgName)
	}

	id := rec.RecordID()
	c.busy = true
	c.mu.Unlock()

	err := action.Do(ctx, id, arg)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.mu.Unlock()
		return Fetch{}, err
	}

	c.selected = ""
	c.seq++
	c.loading = true
	fetch := Fetch{Seq: c.seq, Query: c.query.clone()}
	c.mu.Unlock()

	return fetch, nil
}
