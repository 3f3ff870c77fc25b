// Package tui is the interactive todo list. The bubbletea model renders
// from a state.Store and mirrors every intent to the server.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todosync/internal/action"
	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/state"
	"github.com/idilsaglam/todosync/internal/ui"
	"github.com/idilsaglam/todosync/internal/view"
)

// Remote is the part of the API client the TUI needs.
type Remote interface {
	action.Fetcher
	Create(ctx context.Context, text string) (model.TodoItem, error)
	Toggle(ctx context.Context, id int64) (model.TodoItem, error)
	CompleteAll(ctx context.Context) ([]model.TodoItem, error)
}

// fetchedMsg reports the end of a FetchTodos run; on success the store
// already holds the new collection.
type fetchedMsg struct{ err error }

// storeChangedMsg tells the model the store was dispatched to.
type storeChangedMsg struct{}

// syncedMsg reports the end of a write to the server.
type syncedMsg struct {
	op      string
	todos   []model.TodoItem
	refetch bool
	err     error
}

// listItem adapts a view.Row to bubbles/list.Item
type listItem struct{ row view.Row }

func (i listItem) FilterValue() string { return i.row.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render("> ")
	}
	fmt.Fprint(w, prefix+it.row.Line())
}

var (
	toggleKey  = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	addKey     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	markAllKey = key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark all"))
	filterKey  = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "filter"))
	refreshKey = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
)

// Model is the bubbletea model.
type Model struct {
	ctx    context.Context
	store  *state.Store
	remote Remote
	log    *log.Logger

	list list.Model

	// Inline add
	adding bool            // true when inline add is active
	ti     textinput.Model // text input for the new item
	addErr string          // last add validation error

	loading bool
	status  string // last remote error, shown under the list

	width, height int
}

// New builds the model. The store is the single source of truth; the
// model only keeps presentation state.
func New(ctx context.Context, store *state.Store, remote Remote, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = ui.Current().Title
	l.SetStatusBarItemName("item", "items")
	extra := func() []key.Binding {
		return []key.Binding{toggleKey, addKey, markAllKey, filterKey, refreshKey}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item..."
	ti.CharLimit = 200

	m := Model{
		ctx:    ctx,
		store:  store,
		remote: remote,
		log:    logger,
		list:   l,
		ti:     ti,
		width:  80,
		height: 24,

		// Init always starts with a fetch
		loading: true,
	}
	m.resize()
	m.refresh()
	return m
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(ctx context.Context, store *state.Store, remote Remote, logger *log.Logger) error {
	p := tea.NewProgram(New(ctx, store, remote, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	watch(store, p.Send)
	_, err := p.Run()
	return err
}

// watch forwards every store change to send. Dispatches also happen inside
// Update, so send must not block the caller.
func watch(store *state.Store, send func(tea.Msg)) {
	store.Subscribe(func(state.State) {
		go send(storeChangedMsg{})
	})
}

func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	m.loading = true
	ctx, remote, store, logger := m.ctx, m.remote, m.store, m.log
	return func() tea.Msg {
		err := action.FetchTodos(ctx, remote, store)
		if err != nil {
			logger.Error("fetch todos", "err", err)
		}
		return fetchedMsg{err: err}
	}
}

func (m Model) sync(op string, fn func(ctx context.Context) (syncedMsg, error)) tea.Cmd {
	ctx, logger := m.ctx, m.log
	return func() tea.Msg {
		msg, err := fn(ctx)
		msg.op = op
		if err != nil {
			logger.Error("sync", "op", op, "err", err)
			msg.err = err
		}
		return msg
	}
}

// todoList and toolbar are the views built from the current store state.
// Their callbacks dispatch straight into the store.
func (m Model) todoList(st state.State) view.TodoList {
	store := m.store
	return view.TodoList{
		Todos:          st.Todos,
		Filter:         st.Filter,
		ToggleComplete: func(id int64) { store.Dispatch(action.ToggleComplete(id)) },
	}
}

func (m Model) toolbar(st state.State) view.Toolbar {
	store := m.store
	return view.Toolbar{
		ActiveItems:        st.ActiveItems(),
		MarkAllAsCompleted: func() { store.Dispatch(action.MarkAllAsCompleted()) },
	}
}

// refresh rebuilds the list rows from the store.
func (m *Model) refresh() {
	st := m.store.State()
	rows := m.todoList(st).Rows()
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, listItem{row: r})
	}
	m.list.SetItems(items)

	t := ui.Current()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %s",
		"Todos",
		t.Success.Render(t.SymDone), len(st.Todos)-st.ActiveItems(),
		t.Pending.Render(t.SymPending), st.ActiveItems(),
		t.Accent.Render("Filter"), st.Filter,
	)
}

func (m *Model) resize() {
	h := m.height - 5
	if m.adding {
		h -= 4
	}
	m.list.SetSize(m.width-4, max(h, 3))
}

func (m Model) selected() (view.Row, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.row, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case storeChangedMsg:
		m.refresh()
		return m, nil

	case fetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.refresh()
		return m, nil

	case syncedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s: %v", msg.op, msg.err)
			cmd := m.fetch()
			return m, cmd
		}
		if msg.todos != nil {
			m.store.Dispatch(action.FetchAllSuccess(msg.todos))
			m.refresh()
		}
		if msg.refetch {
			cmd := m.fetch()
			return m, cmd
		}
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		// any keypress acknowledges the last error
		m.status = ""
		switch k.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case " ":
			remote := m.remote
			row, ok := m.selected()
			if !ok {
				return m, nil
			}
			row.Toggle()
			m.refresh()
			id := row.ID
			return m, m.sync("toggle", func(ctx context.Context) (syncedMsg, error) {
				_, err := remote.Toggle(ctx, id)
				return syncedMsg{}, err
			})

		case "m":
			remote := m.remote
			m.toolbar(m.store.State()).MarkAll()
			m.refresh()
			return m, m.sync("mark all", func(ctx context.Context) (syncedMsg, error) {
				todos, err := remote.CompleteAll(ctx)
				return syncedMsg{todos: todos}, err
			})

		case "a":
			m.adding = true
			m.addErr = ""
			m.ti.SetValue("")
			m.resize()
			cmd := m.ti.Focus()
			return m, cmd

		case "tab":
			m.store.Dispatch(action.ChangeFilter(m.store.State().Filter.Next()))
			m.refresh()
			m.list.Select(0)
			return m, nil

		case "r":
			cmd := m.fetch()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			text := strings.TrimSpace(m.ti.Value())
			if text == "" {
				m.addErr = "Text cannot be empty"
				return m, nil
			}
			remote := m.remote
			m.store.Dispatch(action.AddItem(text))
			m.closeAdd()
			m.refresh()
			return m, m.sync("add", func(ctx context.Context) (syncedMsg, error) {
				_, err := remote.Create(ctx, text)
				return syncedMsg{refetch: true}, err
			})
		case "esc":
			m.closeAdd()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) closeAdd() {
	m.adding = false
	m.addErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m Model) View() string {
	t := ui.Current()
	st := m.store.State()

	parts := []string{m.list.View()}
	if m.adding {
		title := "Add new item"
		if m.addErr != "" {
			title += " - " + t.Error.Render(m.addErr)
		}
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		parts = append(parts, bar.Render(title+"\n"+m.ti.View()))
	}
	parts = append(parts, m.toolbar(st).View(markAllKey.Help().Key))
	switch {
	case m.loading:
		parts = append(parts, t.Muted.Render("loading..."))
	case m.status != "":
		parts = append(parts, t.Error.Render("✖ "+m.status))
	}
	return ui.Panel(parts)
}
