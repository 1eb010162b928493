package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"clickup/internal/config"
	"clickup/internal/exitcode"
	"clickup/internal/output"
	"clickup/internal/service"
)

func init() {
	Register(&SpaceLsCmd{})
	Register(&SpaceCreateCmd{})
}

// SpaceLsCmd lists the spaces of a team.
type SpaceLsCmd struct{}

func (c *SpaceLsCmd) Name() string      { return "space ls" }
func (c *SpaceLsCmd) Aliases() []string { return nil }
func (c *SpaceLsCmd) Synopsis() string  { return "List spaces in a team" }
func (c *SpaceLsCmd) Usage() string     { return "clickup space ls <team-id>" }
func (c *SpaceLsCmd) NeedsAuth() bool   { return true }

func (c *SpaceLsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SpaceLsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return fail(cfg, out, errOut, "team id required")
	}
	logger(cfg).Info("fetching spaces", "team", args[0])
	page, err := svc.ListSpaces(ctx, args[0])
	if err != nil {
		return fail(cfg, out, errOut, "listing spaces: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, page)
	}
	entries := make([]output.Entry, len(page.Spaces))
	for i, s := range page.Spaces {
		entries[i] = output.Entry{ID: s.ID, Name: s.Name}
	}
	output.FormatEntries(out, "spaces", entries)
	return exitcode.Success
}

// SpaceCreateCmd creates a space in a team.
type SpaceCreateCmd struct{}

func (c *SpaceCreateCmd) Name() string      { return "space create" }
func (c *SpaceCreateCmd) Aliases() []string { return []string{"create-space"} }
func (c *SpaceCreateCmd) Synopsis() string  { return "Create a space" }
func (c *SpaceCreateCmd) Usage() string     { return "clickup space create <team-id> <name...>" }
func (c *SpaceCreateCmd) NeedsAuth() bool   { return true }

func (c *SpaceCreateCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SpaceCreateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	teamID, name, ok := parentAndName(args)
	if !ok {
		return fail(cfg, out, errOut, "team id and space name required")
	}
	logger(cfg).Info("creating space", "team", teamID, "name", name)
	space, err := svc.CreateSpace(ctx, teamID, name)
	if err != nil {
		return fail(cfg, out, errOut, "creating space: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, space)
	}
	output.FormatCreated(out, "Space", space.ID, space.Name)
	return exitcode.Success
}

// parentAndName splits "<parent-id> <name...>" arguments.
func parentAndName(args []string) (parentID, name string, ok bool) {
	if len(args) < 2 {
		return "", "", false
	}
	name = strings.Join(args[1:], " ")
	if strings.TrimSpace(name) == "" {
		return "", "", false
	}
	return args[0], name, true
}
