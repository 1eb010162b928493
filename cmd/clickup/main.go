// Package main is the entry point for the clickup CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"clickup/internal/backend/clickup"
	"clickup/internal/cli"
	"clickup/internal/commands"
	"clickup/internal/config"
	"clickup/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create service factory
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return clickup.New(ctx, cfg)
	}

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
