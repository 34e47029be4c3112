// Package main is the entry point for the todosync CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"todosync/internal/backend/googletasks"
	"todosync/internal/backend/rest"
	"todosync/internal/cli"
	"todosync/internal/commands"
	"todosync/internal/config"
	"todosync/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	rest.UserAgent = "todosync/" + commands.Version

	factory := func(ctx context.Context, cfg *config.Config) (service.Store, error) {
		switch cfg.Backend {
		case config.BackendGoogleTasks:
			return googletasks.New(ctx, cfg)
		default:
			return rest.New(cfg.Endpoint, cfg.UserID), nil
		}
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
