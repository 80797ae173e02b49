package controller

import "fmt"

// Column describes one table column: a header and a cell extractor.
type Column[T Record] struct {
	Header string
	Cell   func(T) string
}

// Section is one block of the detail view. Present gates its visibility on
// the record's attributes; absent sections are omitted entirely.
type Section[T Record] struct {
	Title   string
	Present func(T) bool
	Lines   func(T) []string
}

// DetailSection is a rendered, visible section of a record's detail view.
type DetailSection struct {
	Title string
	Lines []string
}

// Renderer converts page results into table rows and a single record into a
// detail view. It holds no mutable state; one renderer serves every page of
// the same record shape.
type Renderer[T Record] struct {
	Columns     []Column[T]
	Sections    []Section[T]
	Placeholder string // shown instead of the table when a page has no records
}

// Headers returns the table header cells.
func (r Renderer[T]) Headers() []string {
	out := make([]string, len(r.Columns))
	for i, col := range r.Columns {
		out[i] = col.Header
	}
	return out
}

// Rows converts the records into table rows, one cell slice per record. An
// empty page yields no rows; callers show Empty's placeholder instead.
func (r Renderer[T]) Rows(records []T) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			row[i] = col.Cell(rec)
		}
		rows = append(rows, row)
	}
	return rows
}

// Empty returns the placeholder text when the page has no records, and ok
// false otherwise. The placeholder and the table are mutually exclusive.
func (r Renderer[T]) Empty(records []T) (string, bool) {
	if len(records) > 0 {
		return "", false
	}
	if r.Placeholder == "" {
		return "No records found", true
	}
	return r.Placeholder, true
}

// Detail renders the record's visible sections, skipping any whose presence
// predicate does not hold.
func (r Renderer[T]) Detail(rec T) []DetailSection {
	out := make([]DetailSection, 0, len(r.Sections))
	for _, s := range r.Sections {
		if s.Present != nil && !s.Present(rec) {
			continue
		}
		out = append(out, DetailSection{Title: s.Title, Lines: s.Lines(rec)})
	}
	return out
}

// RangeLabel formats the displayed record range, e.g. "1-10 of 25".
func RangeLabel[T Record](p PageResult[T], pageSize int) string {
	if p.Total == 0 || len(p.Records) == 0 {
		return "0 of 0"
	}
	start := (p.Page-1)*pageSize + 1
	end := start + len(p.Records) - 1
	return fmt.Sprintf("%d-%d of %d", start, end, p.Total)
}
