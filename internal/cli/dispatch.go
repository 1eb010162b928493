package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"clickup/internal/commands"
	"clickup/internal/config"
	"clickup/internal/exitcode"
	"clickup/internal/logging"
	"clickup/internal/service"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> usage on stderr
	if len(args) == 0 {
		fmt.Fprint(errOut, commands.HelpText)
		return exitcode.Failure
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.Failure
	}

	// "<group> <sub>" wins over a bare "<group>" command
	if cmd, rest, ok := d.findSubcommand(cmdName, args[1:]); ok {
		return d.dispatchCommand(ctx, cmd, rest, out, errOut)
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		if subs := d.registry.Subcommands(cmdName); len(subs) > 0 {
			fmt.Fprintf(errOut, "error: %s requires a subcommand\nUsage:\n", cmdName)
			for _, sub := range subs {
				fmt.Fprintf(errOut, "  %s\n", sub.Usage())
			}
			return exitcode.Failure
		}
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.Failure
	}

	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	positionalArgs, err := parseInterspersed(fs, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagErrorMessage(err))
		return exitcode.Failure
	}

	// Create config
	cfg, err := config.New(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.Failure
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug
	cfg.JSON = common.json
	cfg.Logger = logging.New(errOut, common.debug, common.quiet)

	// The credential is checked before any API command runs
	var svc service.Service
	if cmd.NeedsAuth() {
		if err := cfg.RequireAPIKey(); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.Failure
		}
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no backend configured")
			return exitcode.Failure
		}
		svc, err = d.factory(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.Failure
		}
	}

	// Run command
	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
	json      bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configDir, "config", "", "")
	fs.BoolVar(&c.quiet, "quiet", false, "")
	fs.BoolVar(&c.debug, "debug", false, "")
	fs.BoolVar(&c.json, "json", false, "")
}

// findSubcommand resolves "<group> <sub>" where sub is the first positional
// token in rest. Flags before sub are skipped along with their values. The
// returned args are rest without sub.
func (d *Dispatcher) findSubcommand(group string, rest []string) (commands.Command, []string, bool) {
	candidates := d.registry.Subcommands(group)
	if len(candidates) == 0 {
		return nil, nil, false
	}
	if cmd, ok := d.registry.Find(group); ok {
		candidates = append(candidates, cmd)
	}

	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		if tok == "--" {
			return nil, nil, false
		}
		if !strings.HasPrefix(tok, "-") || tok == "-" {
			cmd, ok := d.registry.Find(group + " " + tok)
			if !ok {
				return nil, nil, false
			}
			args := append(append([]string{}, rest[:i]...), rest[i+1:]...)
			return cmd, args, true
		}
		if !strings.Contains(tok, "=") && takesValue(strings.TrimLeft(tok, "-"), candidates) {
			i++
		}
	}
	return nil, nil, false
}

// takesValue reports whether the named flag, as defined by any of cmds or
// the common flags, consumes the following token.
func takesValue(name string, cmds []commands.Command) bool {
	for _, cmd := range cmds {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		var common commonFlags
		common.register(fs)
		cmd.RegisterFlags(fs)
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			return false
		}
		return true
	}
	return false
}

// parseInterspersed parses flags that appear anywhere among the positional
// arguments. Everything after "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		// A "--" terminator ends flag parsing for good.
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// flagErrorMessage rewrites flag package errors in the CLI's wording.
func flagErrorMessage(err error) string {
	errStr := err.Error()

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined: ") {
		return "unknown flag: " + strings.TrimPrefix(errStr, "flag provided but not defined: ")
	}

	return errStr
}
