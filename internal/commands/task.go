package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"clickup/internal/config"
	"clickup/internal/exitcode"
	"clickup/internal/output"
	"clickup/internal/service"
)

func init() {
	Register(&TaskCmd{})
	Register(&TaskLsCmd{})
	Register(&TaskCreateCmd{})
	Register(&TaskRmCmd{})
}

var taskIDPattern = regexp.MustCompile(`(?i)^[a-z0-9]{6,}$`)

// LooksLikeTaskID reports whether s can name a task: an "ac_" prefix or at
// least six letters and digits.
func LooksLikeTaskID(s string) bool {
	return strings.HasPrefix(s, "ac_") || taskIDPattern.MatchString(s)
}

// TaskCmd shows a task or updates one of its properties.
type TaskCmd struct {
	file string
}

func (c *TaskCmd) Name() string      { return "task" }
func (c *TaskCmd) Aliases() []string { return nil }
func (c *TaskCmd) Synopsis() string  { return "Show a task or update one property" }
func (c *TaskCmd) Usage() string {
	return "clickup task <id> | clickup task <id> <property> <value...> [--file <path>]"
}
func (c *TaskCmd) NeedsAuth() bool { return true }

func (c *TaskCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.file, "file", "", "")
}

func (c *TaskCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		code := fail(cfg, out, errOut, "task requires a subcommand or task id")
		fmt.Fprint(errOut, taskUsage)
		return code
	}
	taskID := args[0]
	if !LooksLikeTaskID(taskID) {
		return fail(cfg, out, errOut, "unknown task command: %s", taskID)
	}

	if len(args) == 1 && c.file == "" {
		return showTask(ctx, cfg, svc, taskID, out, errOut)
	}
	if len(args) < 2 {
		return fail(cfg, out, errOut, "property required")
	}
	property := args[1]

	var value string
	switch {
	case c.file != "":
		b, err := os.ReadFile(c.file)
		if err != nil {
			return fail(cfg, out, errOut, "reading %s: %v", c.file, err)
		}
		value = string(b)
	case len(args) > 2:
		value = strings.Join(args[2:], " ")
	default:
		return fail(cfg, out, errOut, "value required for %s", property)
	}

	update, err := service.ParseTaskUpdate(property, value)
	if errors.Is(err, service.ErrUnknownProperty) {
		code := fail(cfg, out, errOut, "unknown property: %s", property)
		fmt.Fprintf(errOut, "valid properties: %s\n", strings.Join(service.UpdateProperties, ", "))
		return code
	}
	if err != nil {
		return fail(cfg, out, errOut, "%v", err)
	}

	logger(cfg).Info("updating task", "task", taskID, "property", update.Property())
	task, err := svc.UpdateTask(ctx, taskID, update)
	if err != nil {
		return fail(cfg, out, errOut, "updating task %s: %v", taskID, err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, task)
	}
	output.FormatTaskUpdated(out, taskID, update.Property(), task)
	return exitcode.Success
}

func showTask(ctx context.Context, cfg *config.Config, svc service.Service, taskID string, out, errOut io.Writer) int {
	logger(cfg).Info("fetching task", "task", taskID)
	task, err := svc.GetTask(ctx, taskID)
	if err != nil {
		return fail(cfg, out, errOut, "getting task %s: %v", taskID, err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, task)
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}

const taskUsage = `Usage:
  clickup task ls <list-id>
  clickup task ls --team <team-id>
  clickup task create --list-id <list-id> [options] <name...>
  clickup task <id>
  clickup task <id> <property> <value...>
  clickup task rm <id[,id...]> [id...]
`

// TaskLsCmd lists the tasks of a list or a team.
type TaskLsCmd struct {
	teamID string
}

func (c *TaskLsCmd) Name() string      { return "task ls" }
func (c *TaskLsCmd) Aliases() []string { return nil }
func (c *TaskLsCmd) Synopsis() string  { return "List tasks in a list or a team" }
func (c *TaskLsCmd) Usage() string     { return "clickup task ls <list-id> | clickup task ls --team <team-id>" }
func (c *TaskLsCmd) NeedsAuth() bool   { return true }

func (c *TaskLsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.teamID, "team", "", "")
}

func (c *TaskLsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	switch {
	case c.teamID != "" && len(args) > 0:
		return fail(cfg, out, errOut, "cannot use both a list id and --team")
	case c.teamID != "":
		return listTeamTasks(ctx, cfg, svc, c.teamID, out, errOut)
	case len(args) != 1:
		return fail(cfg, out, errOut, "list id required")
	}

	listID := args[0]
	logger(cfg).Info("fetching tasks", "list", listID)
	page, err := svc.ListTasks(ctx, listID)
	if err != nil {
		return fail(cfg, out, errOut, "listing tasks: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, page)
	}
	output.FormatTasks(out, page.Tasks, false)
	return exitcode.Success
}

func listTeamTasks(ctx context.Context, cfg *config.Config, svc service.Service, teamID string, out, errOut io.Writer) int {
	logger(cfg).Info("fetching tasks", "team", teamID)
	page, err := svc.ListTeamTasks(ctx, teamID)
	if err != nil {
		return fail(cfg, out, errOut, "listing team tasks: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, page)
	}
	output.FormatTasks(out, page.Tasks, true)
	return exitcode.Success
}

// TaskCreateCmd creates a task.
type TaskCreateCmd struct {
	listID       string
	description  string
	markdown     string
	markdownFile string
	assignees    string
	priority     string
	dueDate      string
	status       string
	tags         string
	noWait       bool
}

func (c *TaskCreateCmd) Name() string      { return "task create" }
func (c *TaskCreateCmd) Aliases() []string { return nil }
func (c *TaskCreateCmd) Synopsis() string  { return "Create a task" }
func (c *TaskCreateCmd) Usage() string {
	return "clickup task create --list-id <id> [--description <s> | --markdown <s> | --markdown-file <path>] " +
		"[--assignees <id,id>] [--priority <p>] [--due-date <date>] [--status <s>] [--tags <a,b>] [--no-wait] <name...>"
}
func (c *TaskCreateCmd) NeedsAuth() bool { return true }

func (c *TaskCreateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listID, "list-id", "", "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.markdown, "markdown", "", "")
	fs.StringVar(&c.markdownFile, "markdown-file", "", "")
	fs.StringVar(&c.assignees, "assignees", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.dueDate, "due-date", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.tags, "tags", "", "")
	fs.BoolVar(&c.noWait, "no-wait", false, "")
}

func (c *TaskCreateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.listID == "" {
		return fail(cfg, out, errOut, "--list-id required")
	}
	name := strings.Join(args, " ")
	if strings.TrimSpace(name) == "" {
		return fail(cfg, out, errOut, "task name required")
	}

	req, err := c.request(name)
	if err != nil {
		return fail(cfg, out, errOut, "%v", err)
	}

	logger(cfg).Info("creating task", "list", c.listID, "name", name)
	task, err := svc.CreateTask(ctx, c.listID, req, !c.noWait)
	if err != nil {
		return fail(cfg, out, errOut, "creating task: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, task)
	}
	output.FormatTaskCreated(out, task)
	return exitcode.Success
}

// request builds the creation body from the flags. Markdown wins over a
// plain description.
func (c *TaskCreateCmd) request(name string) (service.TaskCreate, error) {
	req := service.TaskCreate{
		Name:   name,
		Status: strings.TrimSpace(c.status),
		Tags:   service.ParseTags(c.tags),
	}

	switch {
	case c.markdownFile != "":
		b, err := os.ReadFile(c.markdownFile)
		if err != nil {
			return req, fmt.Errorf("reading markdown file %s: %w", c.markdownFile, err)
		}
		req.MarkdownDescription = string(b)
	case c.markdown != "":
		req.MarkdownDescription = c.markdown
	default:
		req.Description = c.description
	}

	if strings.TrimSpace(c.assignees) != "" {
		ids, err := service.ParseAssignees(c.assignees)
		if err != nil {
			return req, err
		}
		req.Assignees = ids
	}
	if c.priority != "" {
		p, err := service.ParsePriority(c.priority)
		if err != nil {
			return req, err
		}
		req.Priority = &p
	}
	if c.dueDate != "" {
		d, err := service.ParseDueDate(c.dueDate)
		if err != nil {
			return req, err
		}
		req.DueDate = &d
	}
	return req, nil
}

// TaskRmCmd deletes one or more tasks.
type TaskRmCmd struct{}

func (c *TaskRmCmd) Name() string      { return "task rm" }
func (c *TaskRmCmd) Aliases() []string { return nil }
func (c *TaskRmCmd) Synopsis() string  { return "Delete tasks" }
func (c *TaskRmCmd) Usage() string     { return "clickup task rm <id[,id...]> [id...]" }
func (c *TaskRmCmd) NeedsAuth() bool   { return true }

func (c *TaskRmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TaskRmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	var ids []string
	for _, arg := range args {
		ids = append(ids, splitIDs(arg)...)
	}
	if len(ids) == 0 {
		return fail(cfg, out, errOut, "task id required")
	}

	logger(cfg).Info("deleting tasks", "count", len(ids))
	result := DeleteTasks(ctx, svc, ids, func(id string, err error) {
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to delete task %s: %v\n", id, err)
			return
		}
		output.FormatDeleted(out, id)
	})
	output.FormatBulkResult(out, len(result.Succeeded), len(result.Failed))
	if len(result.Failed) > 0 {
		return exitcode.Failure
	}
	return exitcode.Success
}
