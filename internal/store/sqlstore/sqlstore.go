// Package sqlstore provides a database/sql implementation of
// store.Repository for SQLite and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO required

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/store"
)

// Dialect captures what differs between the supported databases.
type Dialect struct {
	Name   string
	Driver string
	Schema string
	// Numbered placeholders ($1, $2, ...) instead of ?.
	Numbered bool
	// LockTodos serialises writers that append to the table; empty when
	// the database already allows a single writer.
	LockTodos string
}

var (
	SQLite = Dialect{
		Name:   "sqlite",
		Driver: "sqlite",
		Schema: `
CREATE TABLE IF NOT EXISTS todos (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	text     TEXT    NOT NULL,
	status   TEXT    NOT NULL DEFAULT 'active',
	position INTEGER NOT NULL
);`,
	}

	Postgres = Dialect{
		Name:   "postgres",
		Driver: "postgres",
		Schema: `
CREATE TABLE IF NOT EXISTS todos (
	id       BIGSERIAL PRIMARY KEY,
	text     TEXT    NOT NULL,
	status   TEXT    NOT NULL DEFAULT 'active',
	position INTEGER NOT NULL
);`,
		Numbered:  true,
		LockTodos: `LOCK TABLE todos IN SHARE ROW EXCLUSIVE MODE`,
	}
)

// DialectByName resolves "sqlite" or "postgres".
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	case Postgres.Name, "postgresql", "pg":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
}

// rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) rebind(q string) string {
	if !d.Numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store implements store.Repository on a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Repository = (*Store)(nil)

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, d Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if d.Name == SQLite.Name {
		// a single connection keeps writers from tripping SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, d.Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, dialect: d}, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) list(ctx context.Context, q querier) ([]model.TodoItem, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, text, status, position FROM todos ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := []model.TodoItem{}
	for rows.Next() {
		var it model.TodoItem
		var status string
		if err := rows.Scan(&it.ID, &it.Text, &status, &it.Position); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		it.Status = model.Status(status)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) List(ctx context.Context) ([]model.TodoItem, error) {
	return s.list(ctx, s.db)
}

// insertTodo appends at the end of the list.
const insertTodo = `INSERT INTO todos (text, status, position)
VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM todos))
RETURNING id, position`

func (s *Store) Create(ctx context.Context, text string) (model.TodoItem, error) {
	item := model.TodoItem{Text: text, Status: model.StatusActive}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return item, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if s.dialect.LockTodos != "" {
		if _, err := tx.ExecContext(ctx, s.dialect.LockTodos); err != nil {
			return item, fmt.Errorf("lock: %w", err)
		}
	}
	err = tx.QueryRowContext(ctx,
		s.dialect.rebind(insertTodo),
		item.Text, string(item.Status),
	).Scan(&item.ID, &item.Position)
	if err != nil {
		return item, fmt.Errorf("insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return item, fmt.Errorf("commit: %w", err)
	}
	return item, nil
}

func (s *Store) Toggle(ctx context.Context, id int64) (model.TodoItem, error) {
	var it model.TodoItem
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(
		`UPDATE todos SET status = CASE status WHEN 'completed' THEN 'active' ELSE 'completed' END WHERE id = ?`), id)
	if err != nil {
		return it, fmt.Errorf("toggle: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return it, store.ErrNotFound
	}

	var status string
	err = s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT id, text, status, position FROM todos WHERE id = ?`), id,
	).Scan(&it.ID, &it.Text, &status, &it.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return it, store.ErrNotFound
	}
	if err != nil {
		return it, fmt.Errorf("select: %w", err)
	}
	it.Status = model.Status(status)
	return it, nil
}

func (s *Store) CompleteAll(ctx context.Context) ([]model.TodoItem, error) {
	if _, err := s.db.ExecContext(ctx, s.dialect.rebind(`UPDATE todos SET status = ?`), string(model.StatusCompleted)); err != nil {
		return nil, fmt.Errorf("complete all: %w", err)
	}
	return s.List(ctx)
}

func (s *Store) Reorder(ctx context.Context, id int64, position int) ([]model.TodoItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	items, err := s.list(ctx, tx)
	if err != nil {
		return nil, err
	}
	moved, err := store.Move(items, id, position)
	if err != nil {
		return nil, err
	}
	upd := s.dialect.rebind(`UPDATE todos SET position = ? WHERE id = ?`)
	for _, it := range moved {
		if _, err := tx.ExecContext(ctx, upd, it.Position, it.ID); err != nil {
			return nil, fmt.Errorf("update position: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return moved, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
