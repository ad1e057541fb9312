// Package taskclient is a Go client for the task planner REST API. It
// keeps an in-memory snapshot of the caller's tasks and applies each
// successful mutation to that snapshot, so callers can render the task
// list without re-fetching after every change.
package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Task is the wire representation of a task.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filter narrows a Refresh call. Zero values mean "all tasks".
type Filter struct {
	Status string
	Search string
}

// CreateData carries the fields for a new task.
type CreateData struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateData carries a partial update. Nil fields are left untouched.
type UpdateData struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Result reports the outcome of a mutation. Mutators never return a Go
// error; transport and server failures both surface here.
type Result struct {
	Success bool
	Message string
	Task    *Task
}

// errorBody is the server's error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client talks to the task API and owns the cached task list. All
// methods are safe for concurrent use; when calls race, the last
// response to arrive wins.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	token   string
	tasks   []Task
	loading bool
	errMsg  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the API at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the Bearer token attached to every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Tasks returns a copy of the cached task list.
func (c *Client) Tasks() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Loading reports whether a Refresh is in flight.
func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error message from the last failed Refresh, or an
// empty string. A Refresh in flight clears it.
func (c *Client) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Refresh fetches the task list matching filter. On success the whole
// cache is replaced; on failure the cache is preserved and Err reports
// what went wrong.
func (c *Client) Refresh(ctx context.Context, filter Filter) {
	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var tasks []Task
	err := c.do(ctx, http.MethodGet, path, nil, &tasks)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.errMsg = err.Error()
		return
	}
	c.tasks = tasks
}

// Create adds a new task. On success the task is prepended to the
// cache, matching the server's newest-first ordering.
func (c *Client) Create(ctx context.Context, data CreateData) Result {
	var created Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", data, &created); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	c.mu.Lock()
	c.tasks = append([]Task{created}, c.tasks...)
	c.mu.Unlock()

	return Result{Success: true, Message: "Task created", Task: &created}
}

// Update applies a partial update to a task. On success the matching
// cached record is replaced in place.
func (c *Client) Update(ctx context.Context, id string, data UpdateData) Result {
	var updated Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), data, &updated); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == updated.ID {
			c.tasks[i] = updated
			break
		}
	}
	c.mu.Unlock()

	return Result{Success: true, Message: "Task updated", Task: &updated}
}

// Delete removes a task. On success it is dropped from the cache.
func (c *Client) Delete(ctx context.Context, id string) Result {
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	c.mu.Lock()
	kept := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	c.mu.Unlock()

	return Result{Success: true, Message: "Task deleted"}
}

// ToggleStatus flips a task between pending and completed.
func (c *Client) ToggleStatus(ctx context.Context, id, current string) Result {
	next := "completed"
	if current == "completed" {
		next = "pending"
	}
	return c.Update(ctx, id, UpdateData{Status: &next})
}

// do performs one HTTP round trip. A non-2xx response is returned as an
// error carrying the server's message when one is present.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&eb); decodeErr == nil && eb.Message != "" {
			return fmt.Errorf("%s", eb.Message)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
