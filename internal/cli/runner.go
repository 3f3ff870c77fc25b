package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/idilsaglam/todosync/internal/action"
	"github.com/idilsaglam/todosync/internal/api"
	"github.com/idilsaglam/todosync/internal/config"
	"github.com/idilsaglam/todosync/internal/logging"
	"github.com/idilsaglam/todosync/internal/state"
	"github.com/idilsaglam/todosync/internal/tui"
	"github.com/idilsaglam/todosync/internal/ui"
	"github.com/idilsaglam/todosync/internal/view"
)

// Env is everything Run touches outside its arguments.
type Env struct {
	Stdout, Stderr io.Writer
	Getenv         config.GetenvFunc
	// Interactive reports whether stdout is a terminal; it selects the
	// TUI when no subcommand is given.
	Interactive bool
	// Width is the terminal width used for ls output.
	Width int
	// Prompt reads one line of input for `add` without arguments.
	Prompt func(prompt string) (string, error)
}

// DefaultEnv wires Env to the real process.
func DefaultEnv() Env {
	return Env{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Getenv:      os.Getenv,
		Interactive: isTTY(os.Stdout),
		Width:       ui.TermWidth(os.Stdout, 80),
		Prompt:      promptLine,
	}
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type runner struct {
	env    Env
	cfg    config.Config
	client *api.Client
	log    *log.Logger
}

// Run parses root flags, dispatches subcommands and returns an exit code
// (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, env Env) int {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	configPath := fs.StringP("config", "c", "", "config file (TOML)")
	server := fs.StringP("server", "s", "", "todo API base URL")
	filter := fs.StringP("filter", "f", "", "filter: all|active|completed")
	theme := fs.String("theme", "", "theme: classic|neon|mono")
	logLevel := fs.String("log-level", "", "log level: debug|info|warn|error")
	logFile := fs.String("log-file", "", "write logs to this file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			PrintHelp(env.Stdout)
			return 0
		}
		ui.Fail(env.Stderr, err.Error())
		return 2
	}

	cfg, _, err := config.Load(*configPath, env.Getenv)
	if err != nil {
		ui.Fail(env.Stderr, "config: "+err.Error())
		return 2
	}
	override := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	override("server", &cfg.Server, *server)
	override("filter", &cfg.Filter, *filter)
	override("theme", &cfg.Theme, *theme)
	override("log-level", &cfg.LogLevel, *logLevel)
	override("log-file", &cfg.LogFile, *logFile)
	if err := cfg.Validate(); err != nil {
		ui.Fail(env.Stderr, err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)

	rest := fs.Args()
	cmd := ""
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}
	switch cmd {
	case "help":
		PrintHelp(env.Stdout)
		return 0
	case "":
		if !env.Interactive {
			PrintHelp(env.Stderr)
			return 2
		}
		cmd = "tui"
	}

	logOut := env.Stderr
	if cmd == "tui" {
		logOut = io.Discard
	}
	if cfg.LogFile != "" {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			ui.Fail(env.Stderr, err.Error())
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.New(logOut, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Prefix: "todo",
	})

	client, err := api.New(cfg.Server, api.WithLogger(logger))
	if err != nil {
		ui.Fail(env.Stderr, err.Error())
		return 2
	}

	r := &runner{env: env, cfg: cfg, client: client, log: logger}
	return r.dispatch(ctx, cmd, rest)
}

func (r *runner) dispatch(ctx context.Context, cmd string, a []string) int {
	switch cmd {
	case "ls":
		return r.doList(ctx)

	case "tui":
		return r.doTUI(ctx)

	case "add":
		return r.doAdd(ctx, a)

	case "toggle", "done":
		if len(a) != 1 {
			return r.usage("usage: todo toggle <id>")
		}
		id, err := strconv.ParseInt(a[0], 10, 64)
		if err != nil {
			return r.usage("toggle: not a number: " + a[0])
		}
		return r.doToggle(ctx, id)

	case "complete-all":
		return r.doCompleteAll(ctx)

	case "mv":
		if len(a) != 2 {
			return r.usage("usage: todo mv <id> <position>")
		}
		id, err := strconv.ParseInt(a[0], 10, 64)
		if err != nil {
			return r.usage("mv: not a number: " + a[0])
		}
		pos, err := strconv.Atoi(a[1])
		if err != nil {
			return r.usage("mv: not a number: " + a[1])
		}
		return r.doMove(ctx, id, pos)
	}

	ui.Fail(r.env.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.env.Stderr)
	PrintHelp(r.env.Stderr)
	return 2
}

func (r *runner) usage(msg string) int {
	ui.Fail(r.env.Stderr, msg)
	return 2
}

// remoteFail reports a failed API call; not-found gets a hint.
func (r *runner) remoteFail(verb string, err error) int {
	r.log.Debug("remote call failed", "op", verb, "err", err)
	ui.Fail(r.env.Stderr, verb+": "+err.Error())
	if api.IsNotFound(err) {
		fmt.Fprintln(r.env.Stderr, ui.Current().Muted.Render("Hint: run `todo ls` to see valid ids"))
	}
	return 1
}

// PrintHelp writes usage to w.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `todo - a to-do list synced with a todo API

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  ls                   List items (honours --filter)
  tui                  Interactive list (default on a terminal)
  add [text...]        Add a new item; prompts when no text is given
  toggle <id>          Toggle an item between active and completed
  complete-all         Mark every item as completed
  mv <id> <position>   Move an item to a 0-based position
  help                 Show this help

Flags:
  -s, --server URL     API base URL (default %s, env TODO_SERVER)
  -c, --config PATH    Config file (default $XDG_CONFIG_HOME/todo/config.toml)
  -f, --filter F       all|active|completed (env TODO_FILTER)
      --theme NAME     classic|neon|mono (env TODO_THEME)
      --log-level L    debug|info|warn|error (env TODO_LOG_LEVEL)
      --log-file PATH  Write logs to a file (env TODO_LOG_FILE)

Examples:
  todo add "Buy milk"
  todo --filter active ls
  todo toggle 2
  todo mv 3 0
`, api.DefaultServer)
}

// ---------------------------------------------------
// Subcommands
// ---------------------------------------------------

func (r *runner) newStore() *state.Store {
	st := state.New()
	st.Filter = r.cfg.FilterValue()
	return state.NewStore(st)
}

func (r *runner) doList(ctx context.Context) int {
	store := r.newStore()
	if err := action.FetchTodos(ctx, r.client, store); err != nil {
		return r.remoteFail("fetch", err)
	}
	st := store.State()
	list := view.TodoList{Todos: st.Todos, Filter: st.Filter}
	toolbar := view.Toolbar{ActiveItems: st.ActiveItems()}
	t := ui.Current()

	lines := []string{t.Title.Render("Todos") + "  " + t.Muted.Render("("+string(st.Filter)+")")}
	rows := list.Rows()
	if len(rows) == 0 {
		lines = append(lines, t.Muted.Render("nothing to show"))
	}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s %s", t.Muted.Render(fmt.Sprintf("%3d", row.ID)), row.Line()))
	}
	done := len(st.Todos) - st.ActiveItems()
	lines = append(lines,
		"",
		toolbar.ItemsLeft(),
		ui.ProgressBar(done, len(st.Todos), max(r.env.Width/3, 10)),
	)
	fmt.Fprintln(r.env.Stdout, ui.Panel(lines))
	return 0
}

func (r *runner) doTUI(ctx context.Context) int {
	if err := tui.Run(ctx, r.newStore(), r.client, r.log); err != nil {
		ui.Fail(r.env.Stderr, "tui: "+err.Error())
		return 1
	}
	return 0
}

func (r *runner) doAdd(ctx context.Context, a []string) int {
	text := strings.Join(a, " ")
	if len(a) == 0 {
		if r.env.Prompt == nil {
			return r.usage("usage: todo add <text...>")
		}
		line, err := r.env.Prompt("New item: ")
		if err != nil {
			if errors.Is(err, errPromptAborted) {
				return 1
			}
			ui.Fail(r.env.Stderr, "read text: "+err.Error())
			return 1
		}
		text = line
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return r.usage("add: empty text")
	}
	item, err := r.client.Create(ctx, text)
	if err != nil {
		return r.remoteFail("add", err)
	}
	ui.OK(r.env.Stdout, fmt.Sprintf("added #%d", item.ID))
	return 0
}

func (r *runner) doToggle(ctx context.Context, id int64) int {
	item, err := r.client.Toggle(ctx, id)
	if err != nil {
		return r.remoteFail("toggle", err)
	}
	ui.OK(r.env.Stdout, fmt.Sprintf("toggled #%d (%s)", item.ID, item.Status))
	return 0
}

func (r *runner) doCompleteAll(ctx context.Context) int {
	todos, err := r.client.CompleteAll(ctx)
	if err != nil {
		return r.remoteFail("complete-all", err)
	}
	ui.OK(r.env.Stdout, fmt.Sprintf("%s (%d total)", view.MarkAllLabel, len(todos)))
	return 0
}

func (r *runner) doMove(ctx context.Context, id int64, pos int) int {
	todos, err := r.client.Reorder(ctx, id, pos)
	if err != nil {
		return r.remoteFail("mv", err)
	}
	for i, it := range todos {
		if it.ID == id {
			ui.OK(r.env.Stdout, fmt.Sprintf("moved #%d to position %d", id, i))
			return 0
		}
	}
	ui.OK(r.env.Stdout, "moved")
	return 0
}
