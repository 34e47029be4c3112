// Package googletasks implements service.Store over the Google Tasks API,
// using the user's default task list as the remote collection.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todosync/internal/config"
	"todosync/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Store using Google Tasks API.
type Client struct {
	svc    *tasks.Service
	listID string
}

// New creates a new Google Tasks client from the credentials stored in the
// config directory. Both oauth_client.json and token.json must already exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("%s not found in %s", config.OAuthClientFile, cfg.Dir)
	}
	if !cfg.HasToken() {
		return nil, fmt.Errorf("%s not found in %s (no stored credentials)", config.TokenFile, cfg.Dir)
	}

	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source refreshes the access token as needed
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, listID: DefaultListID}, nil
}

// List implements service.Store. It returns open and completed tasks of the
// default list in API order.
func (c *Client) List(ctx context.Context) ([]service.Task, error) {
	var result []service.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, task := range resp.Items {
				result = append(result, service.Task{
					ID:        task.Id,
					Text:      task.Title,
					Completed: task.Status == statusCompleted,
				})
			}
			return nil
		})
	if err != nil {
		return nil, wrapError("list", err)
	}
	return result, nil
}

// Create implements service.Store. The id assigned by Google is ignored.
func (c *Client) Create(ctx context.Context, task service.Task) error {
	_, err := c.svc.Tasks.Insert(c.listID, &tasks.Task{
		Title:  task.Text,
		Status: status(task.Completed),
	}).Context(ctx).Do()
	return wrapError("create", err)
}

// Update implements service.Store.
func (c *Client) Update(ctx context.Context, id string, patch service.Patch) error {
	var body tasks.Task
	if patch.Completed != nil {
		body.Status = status(*patch.Completed)
		if !*patch.Completed {
			// Reopening requires clearing the completion timestamp explicitly.
			body.NullFields = []string{"Completed"}
		}
	}
	_, err := c.svc.Tasks.Patch(c.listID, id, &body).Context(ctx).Do()
	return wrapError("update", err)
}

// Delete implements service.Store.
func (c *Client) Delete(ctx context.Context, id string) error {
	err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do()
	return wrapError("delete", err)
}

func status(completed bool) string {
	if completed {
		return statusCompleted
	}
	return statusNeedsAction
}

// wrapError maps API errors onto the service failure taxonomy.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &service.HTTPFailure{Op: op, StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	return &service.NetworkFailure{Op: op, Err: err}
}
