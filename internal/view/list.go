// Package view holds the presentational components. They keep no state of
// their own: every output is a function of the props passed in.
package view

import (
	"strings"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/ui"
)

// TodoList renders the items that pass Filter.
type TodoList struct {
	Todos          []model.TodoItem
	Filter         model.Filter
	ToggleComplete func(id int64)
}

// Row is one rendered entry. It is keyed by ID, never by text.
type Row struct {
	ID        int64
	Text      string
	Completed bool

	toggle func(id int64)
}

// Toggle fires the list's toggle callback for this row's item.
func (r Row) Toggle() {
	if r.toggle != nil {
		r.toggle(r.ID)
	}
}

// Items returns the visible subset in original order.
func (l TodoList) Items() []model.TodoItem {
	out := make([]model.TodoItem, 0, len(l.Todos))
	for _, it := range l.Todos {
		if l.Filter.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

func (l TodoList) Rows() []Row {
	items := l.Items()
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{
			ID:        it.ID,
			Text:      it.Text,
			Completed: model.IsCompleted(it),
			toggle:    l.ToggleComplete,
		})
	}
	return rows
}

// Line renders a single row as "☐ text".
func (r Row) Line() string {
	t := ui.Current()
	text := r.Text
	if r.Completed {
		text = t.Done.Render(text)
	}
	return t.Box(r.Completed) + " " + text
}

func (l TodoList) View() string {
	rows := l.Rows()
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.Line())
	}
	return strings.Join(lines, "\n")
}
