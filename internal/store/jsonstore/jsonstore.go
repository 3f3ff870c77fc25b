package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every operation reads and rewrites the whole file under one mutex, which is
// fine for a development server.

// DefaultFileName is used when the server is started without a --dsn.
const DefaultFileName = "todos.json"

// Store implements store.Repository on top of a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ store.Repository = (*Store)(nil)

// Open returns a store for path, creating the parent directory.
func Open(path string) (*Store, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = filepath.Join(wd, DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) load() ([]model.TodoItem, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.TodoItem{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.TodoItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.TodoItem{}
	}
	return items, nil
}

func (s *Store) save(items []model.TodoItem) error {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// update loads, applies fn and saves when fn reports a change.
func (s *Store) update(fn func(items []model.TodoItem) ([]model.TodoItem, bool, error)) ([]model.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}
	next, changed, err := fn(items)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.save(next); err != nil {
			return nil, err
		}
	}
	return next, nil
}

func (s *Store) List(_ context.Context) ([]model.TodoItem, error) {
	return s.update(func(items []model.TodoItem) ([]model.TodoItem, bool, error) {
		return items, false, nil
	})
}

func (s *Store) Create(_ context.Context, text string) (model.TodoItem, error) {
	var created model.TodoItem
	_, err := s.update(func(items []model.TodoItem) ([]model.TodoItem, bool, error) {
		var next int64 = 1
		for _, it := range items {
			next = max(next, it.ID+1)
		}
		created = model.TodoItem{ID: next, Text: text, Status: model.StatusActive, Position: len(items)}
		return append(items, created), true, nil
	})
	return created, err
}

func (s *Store) Toggle(_ context.Context, id int64) (model.TodoItem, error) {
	var toggled model.TodoItem
	_, err := s.update(func(items []model.TodoItem) ([]model.TodoItem, bool, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Status = store.Flip(items[i].Status)
				toggled = items[i]
				return items, true, nil
			}
		}
		return nil, false, store.ErrNotFound
	})
	return toggled, err
}

func (s *Store) CompleteAll(_ context.Context) ([]model.TodoItem, error) {
	return s.update(func(items []model.TodoItem) ([]model.TodoItem, bool, error) {
		for i := range items {
			items[i].Status = model.StatusCompleted
		}
		return items, true, nil
	})
}

func (s *Store) Reorder(_ context.Context, id int64, position int) ([]model.TodoItem, error) {
	return s.update(func(items []model.TodoItem) ([]model.TodoItem, bool, error) {
		moved, err := store.Move(items, id, position)
		if err != nil {
			return nil, false, err
		}
		return moved, true, nil
	})
}

func (s *Store) Close() error { return nil }
