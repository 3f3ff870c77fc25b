// Package storetest is the behaviour suite every store.Repository backend
// runs in its own tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/store"
)

// Factory returns a fresh, empty repository.
type Factory func(t *testing.T) store.Repository

func ids(items []model.TodoItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func create(t *testing.T, r store.Repository, texts ...string) []model.TodoItem {
	t.Helper()
	out := make([]model.TodoItem, 0, len(texts))
	for _, text := range texts {
		it, err := r.Create(context.Background(), text)
		require.NoError(t, err)
		out = append(out, it)
	}
	return out
}

// Run exercises the full Repository contract against repositories from newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("EmptyList", func(t *testing.T) {
		r := newRepo(t)
		got, err := r.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("CreateAppends", func(t *testing.T) {
		r := newRepo(t)
		made := create(t, r, "React", "React")

		assert.NotEqual(t, made[0].ID, made[1].ID)
		assert.Equal(t, model.StatusActive, made[0].Status)
		assert.Equal(t, 0, made[0].Position)
		assert.Equal(t, 1, made[1].Position)

		got, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, made, got)
	})

	t.Run("ConcurrentCreatesGetDistinctPositions", func(t *testing.T) {
		r := newRepo(t)
		const n = 8

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := r.Create(ctx, fmt.Sprintf("item %d", i))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := r.List(ctx)
		require.NoError(t, err)
		positions := make([]int, 0, len(got))
		for _, it := range got {
			positions = append(positions, it.Position)
		}
		sort.Ints(positions)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, positions)
	})

	t.Run("ToggleFlipsStatus", func(t *testing.T) {
		r := newRepo(t)
		made := create(t, r, "milk")

		it, err := r.Toggle(ctx, made[0].ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, it.Status)

		it, err = r.Toggle(ctx, made[0].ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusActive, it.Status)

		_, err = r.Toggle(ctx, made[0].ID+100)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("CompleteAll", func(t *testing.T) {
		r := newRepo(t)
		create(t, r, "a", "b")

		got, err := r.CompleteAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 0, model.ActiveCount(got))
	})

	t.Run("Reorder", func(t *testing.T) {
		r := newRepo(t)
		made := create(t, r, "a", "b", "c")
		a, b, c := made[0].ID, made[1].ID, made[2].ID

		got, err := r.Reorder(ctx, a, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{b, a, c}, ids(got))

		got, err = r.Reorder(ctx, c, -23)
		require.NoError(t, err)
		assert.Equal(t, []int64{c, b, a}, ids(got))

		got, err = r.Reorder(ctx, c, 23)
		require.NoError(t, err)
		assert.Equal(t, []int64{b, a, c}, ids(got))

		listed, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, got, listed)

		_, err = r.Reorder(ctx, c+100, 0)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
