// Package rest implements service.Store against a REST todo collection
// (GET/POST /todos, PATCH/DELETE /todos/{id}).
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"todosync/internal/service"
)

const (
	// DefaultEndpoint is the public demo collection.
	DefaultEndpoint = "https://jsonplaceholder.typicode.com"

	// DefaultUserID is the owner sent with created todos.
	DefaultUserID = 1

	// maxErrorBody caps how much of an error response is kept in an HTTPFailure.
	maxErrorBody = 512
)

// UserAgent is sent with every request. Set at startup.
var UserAgent = "todosync"

// Client implements service.Store over HTTP.
// It never sets a request timeout: calls run until the server or transport settles them.
type Client struct {
	BaseURL string
	UserID  int
	HTTP    *http.Client
}

// New creates a client for the collection rooted at endpoint.
func New(endpoint string, userID int) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if userID == 0 {
		userID = DefaultUserID
	}
	return &Client{
		BaseURL: strings.TrimRight(endpoint, "/"),
		UserID:  userID,
		HTTP:    &http.Client{},
	}
}

// todo is the wire form of a task.
type todo struct {
	ID        remoteID `json:"id,omitempty"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
	UserID    int      `json:"userId,omitempty"`
}

// remoteID accepts both numeric and string ids.
type remoteID string

func (r *remoteID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return fmt.Errorf("invalid todo id %s", data)
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = remoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid todo id %s: %w", data, err)
	}
	*r = remoteID(n.String())
	return nil
}

// patchBody is the wire form of a partial update.
type patchBody struct {
	Completed *bool `json:"completed,omitempty"`
}

// List implements service.Store.
func (c *Client) List(ctx context.Context) ([]service.Task, error) {
	var todos []todo
	if err := c.do(ctx, "list", http.MethodGet, "/todos", nil, &todos); err != nil {
		return nil, err
	}

	result := make([]service.Task, 0, len(todos))
	for _, t := range todos {
		result = append(result, service.Task{
			ID:        string(t.ID),
			Text:      t.Title,
			Completed: t.Completed,
		})
	}
	return result, nil
}

// Create implements service.Store. The id assigned by the server is ignored.
func (c *Client) Create(ctx context.Context, task service.Task) error {
	body := todo{Title: task.Text, Completed: task.Completed, UserID: c.UserID}
	return c.do(ctx, "create", http.MethodPost, "/todos", body, nil)
}

// Update implements service.Store.
func (c *Client) Update(ctx context.Context, id string, patch service.Patch) error {
	body := patchBody{Completed: patch.Completed}
	return c.do(ctx, "update", http.MethodPatch, todoPath(id), body, nil)
}

// Delete implements service.Store.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, todoPath(id), nil, nil)
}

func todoPath(id string) string {
	return "/todos/" + url.PathEscape(id)
}

// do executes one request. Transport errors become NetworkFailure and
// non-2xx statuses become HTTPFailure.
func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &service.NetworkFailure{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &service.HTTPFailure{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &service.NetworkFailure{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%s: unmarshal response: %w", op, err)
	}
	return nil
}

// String describes the endpoint for logs.
func (c *Client) String() string {
	return "rest " + c.BaseURL + " (user " + strconv.Itoa(c.UserID) + ")"
}
