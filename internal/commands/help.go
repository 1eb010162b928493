package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"clickup/internal/config"
	"clickup/internal/exitcode"
	"clickup/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "clickup help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText)
	return exitcode.Success
}

// HelpText is the top-level usage.
const HelpText = `Usage:
  clickup task ls [common flags] <list-id>
  clickup task ls [common flags] --team <team-id>
  clickup task create [common flags] --list-id <list-id> [task flags] <name...>
  clickup task <id> [common flags]
  clickup task <id> <property> <value...> [--file <path>] [common flags]
  clickup task rm [common flags] <id[,id...]> [id...]
  clickup space ls [common flags] <team-id>
  clickup space create [common flags] <team-id> <name...>
  clickup folder ls [common flags] <space-id>
  clickup folder create [common flags] <space-id> <name...>
  clickup list ls [common flags] [--in-space] <folder-id|space-id>
  clickup list create [common flags] [--in-space] <folder-id|space-id> <name...>
  clickup team ls [common flags] [team-id]
  clickup create-space | create-folder | create-list   Same as "<entity> create"
  clickup help
  clickup version

Task flags:
  --description <text>     Plain text description
  --markdown <text>        Markdown description
  --markdown-file <path>   Read the markdown description from a file
  --assignees <id,id>      Comma-separated user ids
  --priority <p>           low, normal, high, urgent or a number
  --due-date <date>        YYYY-MM-DD or milliseconds since the epoch
  --status <status>        Initial status
  --tags <a,b>             Comma-separated tags
  --no-wait                Do not wait for the custom id

Properties:
  name, description, status, priority, assignees, due_date, tags

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
  --json           Print the API response as JSON

Environment:
  CLICKUP_API_KEY  API key (required for every command except help and version)
`
