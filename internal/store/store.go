// Package store defines the persistence contract of the development server
// and the helpers shared by its backends.
package store

import (
	"context"
	"errors"
	"slices"

	"github.com/idilsaglam/todosync/internal/model"
)

// ErrNotFound is returned when an item ID does not exist.
var ErrNotFound = errors.New("todo not found")

// Repository is the storage contract. Every backend keeps items ordered by
// position, positions dense from 0.
type Repository interface {
	List(ctx context.Context) ([]model.TodoItem, error)
	Create(ctx context.Context, text string) (model.TodoItem, error)
	Toggle(ctx context.Context, id int64) (model.TodoItem, error)
	CompleteAll(ctx context.Context) ([]model.TodoItem, error)
	Reorder(ctx context.Context, id int64, position int) ([]model.TodoItem, error)
	Close() error
}

// Flip returns the opposite status.
func Flip(s model.Status) model.Status {
	if s == model.StatusCompleted {
		return model.StatusActive
	}
	return model.StatusCompleted
}

// Move returns items with the item id relocated to position. Negative
// positions clamp to 0, positions past the end clamp to the last slot.
// Positions are renumbered densely. items is not modified.
func Move(items []model.TodoItem, id int64, position int) ([]model.TodoItem, error) {
	from := slices.IndexFunc(items, func(it model.TodoItem) bool { return it.ID == id })
	if from < 0 {
		return nil, ErrNotFound
	}
	position = max(0, min(position, len(items)-1))

	out := slices.Clone(items)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, position, moved)
	Renumber(out)
	return out, nil
}

// Renumber rewrites positions to match slice order.
func Renumber(items []model.TodoItem) {
	for i := range items {
		items[i].Position = i
	}
}
