// Package api is the HTTP client for the todo REST endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todosync/internal/model"
)

// Path is the collection endpoint relative to the configured host.
const Path = "/api/v1/todo"

// DefaultServer is where the client looks when nothing is configured.
const DefaultServer = "http://localhost:5000"

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client talks to one todo server. It carries no timeout of its own;
// callers bound requests through the context.
type Client struct {
	base string
	http *http.Client
	log  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the server at baseURL (scheme and host, optional
// path prefix).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q: missing host", baseURL)
	}
	c := &Client{
		base: strings.TrimRight(u.String(), "/") + Path,
		http: http.DefaultClient,
		log:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the collection URL this client targets.
func (c *Client) Endpoint() string { return c.base }

// List fetches the full collection.
func (c *Client) List(ctx context.Context) ([]model.TodoItem, error) {
	var todos []model.TodoItem
	if err := c.do(ctx, http.MethodGet, c.base, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.TodoItem{}
	}
	return todos, nil
}

// Create adds a new active item with the given text.
func (c *Client) Create(ctx context.Context, text string) (model.TodoItem, error) {
	var item model.TodoItem
	form := url.Values{"text": {text}}
	err := c.do(ctx, http.MethodPost, c.base+"/", form, &item)
	return item, err
}

// Toggle flips the status of one item.
func (c *Client) Toggle(ctx context.Context, id int64) (model.TodoItem, error) {
	var item model.TodoItem
	err := c.do(ctx, http.MethodPut, c.itemURL(id), nil, &item)
	return item, err
}

// CompleteAll marks every item completed and returns the new collection.
func (c *Client) CompleteAll(ctx context.Context) ([]model.TodoItem, error) {
	var todos []model.TodoItem
	err := c.do(ctx, http.MethodPut, c.base+"/complete", nil, &todos)
	return todos, err
}

// Reorder moves an item to position and returns the reordered collection.
func (c *Client) Reorder(ctx context.Context, id int64, position int) ([]model.TodoItem, error) {
	var todos []model.TodoItem
	form := url.Values{"new_position": {strconv.Itoa(position)}}
	err := c.do(ctx, http.MethodPut, c.itemURL(id)+"/reorder", form, &todos)
	return todos, err
}

func (c *Client) itemURL(id int64) string {
	return c.base + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, target string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.log.Debug("request", "method", method, "url", target)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	c.log.Debug("response", "method", method, "url", target, "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			URL:    target,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, target, err)
	}
	return nil
}
