package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todosync/internal/action"
	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/state"
)

type fakeRemote struct {
	mu      sync.Mutex
	todos   []model.TodoItem
	listErr error
	syncErr error
	calls   []string
}

func (f *fakeRemote) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRemote) List(context.Context) ([]model.TodoItem, error) {
	f.record("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.todos, nil
}

func (f *fakeRemote) Create(_ context.Context, text string) (model.TodoItem, error) {
	f.record("create " + text)
	return model.TodoItem{ID: 100, Text: text, Status: model.StatusActive}, f.syncErr
}

func (f *fakeRemote) Toggle(context.Context, int64) (model.TodoItem, error) {
	f.record("toggle")
	return model.TodoItem{}, f.syncErr
}

func (f *fakeRemote) CompleteAll(context.Context) ([]model.TodoItem, error) {
	f.record("complete")
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	out := make([]model.TodoItem, len(f.todos))
	for i, it := range f.todos {
		it.Status = model.StatusCompleted
		out[i] = it
	}
	return out, nil
}

func groceries() []model.TodoItem {
	return []model.TodoItem{
		{ID: 1, Text: "milk", Status: model.StatusActive},
		{ID: 2, Text: "eggs", Status: model.StatusCompleted},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step runs cmd (if any) and feeds its message back into the model.
func step(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func started(t *testing.T, remote *fakeRemote) (Model, *state.Store) {
	t.Helper()
	store := state.NewStore(state.New())
	m := New(context.Background(), store, remote, nil)
	m = step(t, m, m.Init())
	return m, store
}

func TestInitFetchesIntoStore(t *testing.T) {
	t.Parallel()

	m, store := started(t, &fakeRemote{todos: groceries()})

	assert.Equal(t, groceries(), store.State().Todos)
	assert.False(t, m.loading)
	out := m.View()
	assert.Contains(t, out, "milk")
	assert.Contains(t, out, "eggs")
	assert.Contains(t, out, "1 item left")
}

func TestInitFetchErrorIsShown(t *testing.T) {
	t.Parallel()

	m, store := started(t, &fakeRemote{listErr: errors.New("connection refused")})

	assert.Empty(t, store.State().Todos)
	assert.Contains(t, m.status, "connection refused")
	assert.Contains(t, m.View(), "connection refused")
	assert.Contains(t, m.View(), "0 items left")
}

func TestSpaceTogglesSelectedAndSyncs(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{todos: groceries()}
	m, store := started(t, remote)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	assert.Equal(t, model.StatusCompleted, store.State().Todos[0].Status)

	m = step(t, m, cmd)
	assert.Contains(t, remote.calls, "toggle")
	assert.Empty(t, m.status)
}

func TestMarkAllUsesServerResult(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{todos: groceries()}
	m, store := started(t, remote)

	m, cmd := update(t, m, keyRunes("m"))
	assert.Equal(t, 0, store.State().ActiveItems())

	m = step(t, m, cmd)
	assert.Contains(t, remote.calls, "complete")
	assert.Contains(t, m.View(), "0 items left")
}

func TestSyncFailureRefetches(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{todos: groceries(), syncErr: errors.New("boom")}
	m, store := started(t, remote)

	m, cmd := update(t, m, keyRunes("m"))
	m, cmd = update(t, m, cmd())
	assert.Contains(t, m.status, "mark all: boom")
	require.NotNil(t, cmd)

	// the refetch restores the server's view
	m = step(t, m, cmd)
	assert.Equal(t, groceries(), store.State().Todos)
	assert.Contains(t, m.View(), "boom")
}

func TestTabCyclesFilter(t *testing.T) {
	t.Parallel()

	m, store := started(t, &fakeRemote{todos: groceries()})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.FilterActive, store.State().Filter)
	assert.Len(t, m.list.Items(), 1)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.FilterCompleted, store.State().Filter)
	require.Len(t, m.list.Items(), 1)
	assert.Equal(t, "eggs", m.list.Items()[0].FilterValue())

	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.FilterAll, store.State().Filter)
}

func TestAddFlow(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{todos: groceries()}
	m, store := started(t, remote)

	m, _ = update(t, m, keyRunes("a"))
	require.True(t, m.adding)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.adding)
	assert.Equal(t, "Text cannot be empty", m.addErr)

	m.ti.SetValue("  bread ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.adding)
	require.Len(t, store.State().Todos, 3)
	assert.Equal(t, "bread", store.State().Todos[2].Text)

	// create succeeds, then a refetch is issued
	m, cmd = update(t, m, cmd())
	require.NotNil(t, cmd)
	_ = step(t, m, cmd)
	assert.Equal(t, []string{"list", "create bread", "list"}, remote.calls)
}

func TestAddEscapeCancels(t *testing.T) {
	t.Parallel()

	m, store := started(t, &fakeRemote{todos: groceries()})

	m, _ = update(t, m, keyRunes("a"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.adding)
	assert.Len(t, store.State().Todos, 2)
}

func TestQuit(t *testing.T) {
	t.Parallel()

	m, _ := started(t, &fakeRemote{})
	_, cmd := update(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRefreshKeyRefetches(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{todos: groceries()}
	m, store := started(t, remote)
	remote.todos = append(groceries(), model.TodoItem{ID: 3, Text: "bread", Status: model.StatusActive})

	m, cmd := update(t, m, keyRunes("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m = step(t, m, cmd)
	assert.Equal(t, []string{"list", "list"}, remote.calls)
	assert.Len(t, store.State().Todos, 3)
	assert.Contains(t, m.View(), "bread")
}

func TestStoreDispatchFromOutsideIsRendered(t *testing.T) {
	t.Parallel()

	m, store := started(t, &fakeRemote{})
	msgs := make(chan tea.Msg, 1)
	watch(store, func(msg tea.Msg) { msgs <- msg })

	store.Dispatch(action.AddItem("external"))

	m, _ = update(t, m, <-msgs)
	assert.Contains(t, m.View(), "external")
}
