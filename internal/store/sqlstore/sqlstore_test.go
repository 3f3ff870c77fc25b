package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todosync/internal/store"
	"github.com/idilsaglam/todosync/internal/store/storetest"
)

func TestSQLiteRepositoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository {
		s, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "todos.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

// Set TODO_TEST_POSTGRES_DSN to run the suite against a real server.
func TestPostgresRepositoryContract(t *testing.T) {
	dsn := os.Getenv("TODO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TODO_TEST_POSTGRES_DSN not set")
	}
	storetest.Run(t, func(t *testing.T) store.Repository {
		s, err := Open(context.Background(), Postgres, dsn)
		require.NoError(t, err)
		_, err = s.db.Exec(`TRUNCATE todos RESTART IDENTITY`)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestRebind(t *testing.T) {
	t.Parallel()

	q := `UPDATE todos SET position = ? WHERE id = ?`
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, `UPDATE todos SET position = $1 WHERE id = $2`, Postgres.rebind(q))
}

func TestDialectByName(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]string{
		"sqlite":     "sqlite",
		"SQLite3":    "sqlite",
		"postgres":   "postgres",
		"postgresql": "postgres",
		"pg":         "postgres",
	} {
		d, err := DialectByName(name)
		require.NoError(t, err)
		assert.Equal(t, want, d.Name)
	}

	_, err := DialectByName("mysql")
	assert.Error(t, err)
}

func TestInsertComputesPositionInStatement(t *testing.T) {
	t.Parallel()

	q := Postgres.rebind(insertTodo)
	assert.Contains(t, q, "VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM todos))")
	assert.NotEmpty(t, Postgres.LockTodos)
	assert.Empty(t, SQLite.LockTodos)
}
