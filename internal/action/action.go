// Package action builds the descriptors that describe state-change intents.
// Constructors are pure: they never validate and never fail.
package action

import (
	"slices"

	"github.com/idilsaglam/todosync/internal/model"
)

// Kind names an intent.
type Kind string

const (
	KindToggleComplete   Kind = "TOGGLE_COMPLETE"
	KindMarkAllCompleted Kind = "MARK_ALL_COMPLETED"
	KindAddItem          Kind = "ADD_ITEM"
	KindSetState         Kind = "SET_STATE"
	KindChangeFilter     Kind = "CHANGE_FILTER"
)

// Action is an immutable intent descriptor. Only the fields relevant to
// Kind are set.
type Action struct {
	Kind   Kind
	ItemID int64
	Text   string
	Todos  []model.TodoItem
	Filter model.Filter
}

func ToggleComplete(itemID int64) Action {
	return Action{Kind: KindToggleComplete, ItemID: itemID}
}

func MarkAllAsCompleted() Action {
	return Action{Kind: KindMarkAllCompleted}
}

func AddItem(text string) Action {
	return Action{Kind: KindAddItem, Text: text}
}

// FetchAllSuccess replaces the whole collection. The slice is copied so the
// descriptor never aliases the caller's data.
func FetchAllSuccess(todos []model.TodoItem) Action {
	return Action{Kind: KindSetState, Todos: slices.Clone(todos)}
}

func ChangeFilter(f model.Filter) Action {
	return Action{Kind: KindChangeFilter, Filter: f}
}
