package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/idilsaglam/todosync/internal/model"
)

// ErrRemoteFetch is the single failure kind of FetchTodos.
var ErrRemoteFetch = errors.New("remote fetch failed")

// Fetcher retrieves the authoritative collection.
type Fetcher interface {
	List(ctx context.Context) ([]model.TodoItem, error)
}

// Dispatcher accepts descriptors and applies them to state.
type Dispatcher interface {
	Dispatch(a Action)
}

// DispatchFunc adapts a plain function to Dispatcher.
type DispatchFunc func(a Action)

func (f DispatchFunc) Dispatch(a Action) { f(a) }

// FetchTodos reads the full collection once and dispatches SET_STATE with it.
// Failures are returned wrapped in ErrRemoteFetch and nothing is dispatched.
// No retry, no caching, no guard against overlapping calls.
func FetchTodos(ctx context.Context, f Fetcher, d Dispatcher) error {
	todos, err := f.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}
	d.Dispatch(FetchAllSuccess(todos))
	return nil
}
