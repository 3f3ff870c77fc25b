package model

import "fmt"

// Status is the completion state of a todo entry.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// TodoItem is the domain model for a todo entry as served by the API.
// Position is only meaningful server-side; the client keeps the order it
// was given.
type TodoItem struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Status   Status `json:"status"`
	Position int    `json:"position"`
}

// IsCompleted reports whether the item's status is completed.
func IsCompleted(item TodoItem) bool {
	return item.Status == StatusCompleted
}

// Filter selects which items a list view shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps a user-supplied string onto one of the three filters.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all|active|completed)", s)
}

// Match reports whether item is visible under f.
func (f Filter) Match(item TodoItem) bool {
	return f == FilterAll || Status(f) == item.Status
}

// Next cycles all -> active -> completed -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// ActiveCount returns the number of items still to do.
func ActiveCount(items []TodoItem) int {
	n := 0
	for _, it := range items {
		if it.Status == StatusActive {
			n++
		}
	}
	return n
}
