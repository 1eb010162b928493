package commands

import (
	"context"
	"flag"
	"io"

	"clickup/internal/config"
	"clickup/internal/exitcode"
	"clickup/internal/output"
	"clickup/internal/service"
)

func init() {
	Register(&TeamLsCmd{})
}

// TeamLsCmd lists the tasks of a team, or the teams themselves when no
// team id is given.
type TeamLsCmd struct{}

func (c *TeamLsCmd) Name() string      { return "team ls" }
func (c *TeamLsCmd) Aliases() []string { return nil }
func (c *TeamLsCmd) Synopsis() string  { return "List team tasks, or teams" }
func (c *TeamLsCmd) Usage() string     { return "clickup team ls [team-id]" }
func (c *TeamLsCmd) NeedsAuth() bool   { return true }

func (c *TeamLsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TeamLsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	switch len(args) {
	case 0:
	case 1:
		return listTeamTasks(ctx, cfg, svc, args[0], out, errOut)
	default:
		return fail(cfg, out, errOut, "too many arguments")
	}

	logger(cfg).Info("fetching teams")
	page, err := svc.ListTeams(ctx)
	if err != nil {
		return fail(cfg, out, errOut, "listing teams: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, page)
	}
	entries := make([]output.Entry, len(page.Teams))
	for i, t := range page.Teams {
		entries[i] = output.Entry{ID: t.ID, Name: t.Name}
	}
	output.FormatEntries(out, "teams", entries)
	return exitcode.Success
}
