// Package state owns the application state and the reducer that applies
// action descriptors to it.
package state

import (
	"slices"
	"sync"

	"github.com/idilsaglam/todosync/internal/action"
	"github.com/idilsaglam/todosync/internal/model"
)

// State is the whole client-side view of the world.
type State struct {
	Todos  []model.TodoItem
	Filter model.Filter
}

func New() State {
	return State{Todos: []model.TodoItem{}, Filter: model.FilterAll}
}

// ActiveItems is the count the toolbar shows.
func (s State) ActiveItems() int { return model.ActiveCount(s.Todos) }

// Reduce returns the state that results from applying a to s. s is never
// modified; unknown kinds return s as is.
func Reduce(s State, a action.Action) State {
	switch a.Kind {
	case action.KindToggleComplete:
		i := slices.IndexFunc(s.Todos, func(it model.TodoItem) bool { return it.ID == a.ItemID })
		if i < 0 {
			return s
		}
		todos := slices.Clone(s.Todos)
		if todos[i].Status == model.StatusCompleted {
			todos[i].Status = model.StatusActive
		} else {
			todos[i].Status = model.StatusCompleted
		}
		s.Todos = todos

	case action.KindMarkAllCompleted:
		todos := slices.Clone(s.Todos)
		for i := range todos {
			todos[i].Status = model.StatusCompleted
		}
		s.Todos = todos

	case action.KindAddItem:
		var next int64 = 1
		for _, it := range s.Todos {
			if it.ID >= next {
				next = it.ID + 1
			}
		}
		todos := slices.Clone(s.Todos)
		s.Todos = append(todos, model.TodoItem{
			ID:       next,
			Text:     a.Text,
			Status:   model.StatusActive,
			Position: len(todos),
		})

	case action.KindSetState:
		s.Todos = slices.Clone(a.Todos)
		if s.Todos == nil {
			s.Todos = []model.TodoItem{}
		}

	case action.KindChangeFilter:
		s.Filter = a.Filter
	}
	return s
}

// Store is the state container. It serialises dispatches so fetch
// completions coming from a goroutine cannot interleave with UI intents.
type Store struct {
	mu   sync.Mutex
	cur  State
	subs []func(State)
}

func NewStore(initial State) *Store {
	return &Store{cur: initial}
}

// Dispatch applies a and notifies subscribers with the new state.
func (s *Store) Dispatch(a action.Action) {
	s.mu.Lock()
	s.cur = Reduce(s.cur, a)
	next := s.cur
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Subscribe registers fn to be called after every dispatch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}
