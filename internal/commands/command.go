// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"clickup/internal/config"
	"clickup/internal/exitcode"
	"clickup/internal/output"
	"clickup/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command calls the API.
	// The dispatcher checks the API key before running such commands.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (settings, output mode, logger).
	// svc is nil if NeedsAuth() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// logger returns the configured logger, or one that discards everything.
func logger(cfg *config.Config) *slog.Logger {
	if cfg == nil || cfg.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.Logger
}

// fail prints an error line and returns the failure exit code. In --json
// mode the message is also written to out as {"error": "<message>"}.
func fail(cfg *config.Config, out, errOut io.Writer, format string, args ...any) int {
	msg := fmt.Sprintf(format, args...)
	if cfg != nil && cfg.JSON {
		_ = output.JSON(out, map[string]string{"error": msg})
	}
	fmt.Fprintf(errOut, "error: %s\n", msg)
	return exitcode.Failure
}

// printJSON writes v as indented JSON.
func printJSON(out, errOut io.Writer, v any) int {
	if err := output.JSON(out, v); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.Failure
	}
	return exitcode.Success
}
