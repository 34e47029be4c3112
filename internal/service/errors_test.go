package service_test

import (
	"errors"
	"fmt"
	"testing"

	"todosync/internal/service"
)

func TestIsFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"network", &service.NetworkFailure{Op: "create", Err: errors.New("refused")}, true},
		{"http", &service.HTTPFailure{Op: "delete", StatusCode: 500}, true},
		{"wrapped http", fmt.Errorf("ctx: %w", &service.HTTPFailure{Op: "update", StatusCode: 404}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.IsFailure(tt.err); got != tt.want {
				t.Errorf("IsFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHTTPFailure(t *testing.T) {
	err := &service.HTTPFailure{Op: "update", StatusCode: 404}

	if err.Class() != "4xx" {
		t.Errorf("expected class 4xx, got %q", err.Class())
	}
	if err.Error() != "update: HTTP 404 Not Found" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if service.StatusOf(fmt.Errorf("wrap: %w", err)) != 404 {
		t.Errorf("expected StatusOf to unwrap to 404")
	}
	if service.StatusOf(errors.New("x")) != 0 {
		t.Errorf("expected StatusOf of plain error to be 0")
	}
}

func TestNetworkFailureUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &service.NetworkFailure{Op: "list", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected NetworkFailure to unwrap to its cause")
	}
}
