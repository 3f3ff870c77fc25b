package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tailscale/hujson"

	"github.com/idilsaglam/todosync/internal/model"
)

//go:embed seed.schema.json
var seedSchemaJSON string

var seedSchema = jsonschema.MustCompileString("seed.schema.json", seedSchemaJSON)

type seedItem struct {
	Text   string       `json:"text"`
	Status model.Status `json:"status"`
}

// ParseSeed reads a JSONC seed document (comments and trailing commas
// allowed) and validates it against the seed schema.
func ParseSeed(data []byte) ([]model.TodoItem, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var doc any
	if err := json.Unmarshal(std, &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := seedSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("seed does not match schema: %s", schemaMessages(err))
	}

	var raw []seedItem
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	items := make([]model.TodoItem, 0, len(raw))
	for i, r := range raw {
		st := r.Status
		if st == "" {
			st = model.StatusActive
		}
		items = append(items, model.TodoItem{Text: r.Text, Status: st, Position: i})
	}
	return items, nil
}

func schemaMessages(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}

// Seed loads the file at path into r when r is empty. It returns the number
// of items imported; a non-empty repository is left untouched.
func Seed(ctx context.Context, r Repository, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed: %w", err)
	}
	items, err := ParseSeed(data)
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", path, err)
	}

	existing, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, it := range items {
		created, err := r.Create(ctx, it.Text)
		if err != nil {
			return 0, fmt.Errorf("seed create: %w", err)
		}
		if it.Status == model.StatusCompleted {
			if _, err := r.Toggle(ctx, created.ID); err != nil {
				return 0, fmt.Errorf("seed toggle: %w", err)
			}
		}
	}
	return len(items), nil
}
