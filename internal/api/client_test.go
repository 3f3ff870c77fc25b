package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todosync/internal/api"
	"github.com/idilsaglam/todosync/internal/model"
)

func newClient(t *testing.T, h http.HandlerFunc) *api.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadURLs(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "localhost:5000", "ftp://example.com", "http://"} {
		_, err := api.New(raw)
		assert.Error(t, err, raw)
	}

	c, err := api.New("http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/v1/todo", c.Endpoint())
}

func TestListDecodesCollection(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/todo", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"text":"milk","status":"active"},{"id":2,"text":"eggs","status":"completed","position":1}]`))
	})

	got, err := c.List(context.Background())
	require.NoError(t, err)

	want := []model.TodoItem{
		{ID: 1, Text: "milk", Status: model.StatusActive},
		{ID: 2, Text: "eggs", Status: model.StatusCompleted, Position: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestListEmptyBodyYieldsEmptySlice(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	got, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListReturnsStatusError(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.List(context.Background())
	require.Error(t, err)

	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, http.MethodGet, se.Method)
	assert.Equal(t, "boom", se.Body)
	assert.False(t, api.IsNotFound(err))
}

func TestListReturnsDecodeError(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestListTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := api.New(url)
	require.NoError(t, err)

	_, err = c.List(context.Background())
	require.Error(t, err)
	var se *api.StatusError
	assert.False(t, errors.As(err, &se))
}

func TestCreateSendsFormText(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/todo/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "React", r.PostForm.Get("text"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"text":"React","status":"active"}`))
	})

	got, err := c.Create(context.Background(), "React")
	require.NoError(t, err)
	assert.Equal(t, model.TodoItem{ID: 7, Text: "React", Status: model.StatusActive}, got)
}

func TestToggleNotFound(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/todo/42", r.URL.Path)
		http.NotFound(w, r)
	})

	_, err := c.Toggle(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestCompleteAllAndReorderPaths(t *testing.T) {
	t.Parallel()

	var paths []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/api/v1/todo/3/reorder" {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "-1", r.PostForm.Get("new_position"))
		}
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.CompleteAll(context.Background())
	require.NoError(t, err)
	_, err = c.Reorder(context.Background(), 3, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"PUT /api/v1/todo/complete",
		"PUT /api/v1/todo/3/reorder",
	}, paths)
}
