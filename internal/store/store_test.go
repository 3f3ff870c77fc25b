package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/store"
)

func three() []model.TodoItem {
	return []model.TodoItem{
		{ID: 1, Text: "a", Position: 0},
		{ID: 2, Text: "b", Position: 1},
		{ID: 3, Text: "c", Position: 2},
	}
}

func order(items []model.TodoItem) []int64 {
	out := make([]int64, 0, len(items))
	for i, it := range items {
		if it.Position != i {
			return nil
		}
		out = append(out, it.ID)
	}
	return out
}

func TestMove(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		id   int64
		pos  int
		want []int64
	}{
		{"forward", 1, 1, []int64{2, 1, 3}},
		{"to front", 3, 0, []int64{3, 1, 2}},
		{"negative clamps to front", 2, -23, []int64{2, 1, 3}},
		{"past end clamps to last", 1, 23, []int64{2, 3, 1}},
		{"same slot", 2, 1, []int64{1, 2, 3}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := three()
			got, err := store.Move(in, tt.id, tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, order(got))
			assert.Equal(t, three(), in)
		})
	}
}

func TestMoveUnknownID(t *testing.T) {
	t.Parallel()

	_, err := store.Move(three(), 9, 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFlip(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.StatusCompleted, store.Flip(model.StatusActive))
	assert.Equal(t, model.StatusActive, store.Flip(model.StatusCompleted))
}
