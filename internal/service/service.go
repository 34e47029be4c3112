// Package service defines the backend-agnostic interface for the remote todo collection.
package service

import "context"

// Store defines the remote collection operations.
// Every call issues exactly one request and reports either success (nil) or a
// failure (*NetworkFailure or *HTTPFailure). Stores never retry and never
// touch local state; retry and rollback policy belong to the caller.
type Store interface {
	// List returns every task in the remote collection, in remote order.
	List(ctx context.Context) ([]Task, error)

	// Create stores a new task. Any id assigned by the remote is ignored.
	Create(ctx context.Context, task Task) error

	// Update applies a partial change to the task with the given id.
	Update(ctx context.Context, id string, patch Patch) error

	// Delete removes the task with the given id.
	Delete(ctx context.Context, id string) error
}
