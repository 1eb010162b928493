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
	Register(&ListLsCmd{})
	Register(&ListCreateCmd{})
}

// listParent picks the parent kind from the --in-space flag.
func listParent(id string, inSpace bool) service.ListParent {
	if inSpace {
		return service.ListParent{Kind: service.ParentSpace, ID: id}
	}
	return service.ListParent{Kind: service.ParentFolder, ID: id}
}

// ListLsCmd lists the lists of a folder, or the folderless lists of a space.
type ListLsCmd struct {
	inSpace bool
}

func (c *ListLsCmd) Name() string      { return "list ls" }
func (c *ListLsCmd) Aliases() []string { return nil }
func (c *ListLsCmd) Synopsis() string  { return "List lists in a folder or space" }
func (c *ListLsCmd) Usage() string     { return "clickup list ls [--in-space] <folder-id|space-id>" }
func (c *ListLsCmd) NeedsAuth() bool   { return true }

func (c *ListLsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.inSpace, "in-space", false, "")
}

func (c *ListLsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return fail(cfg, out, errOut, "folder or space id required")
	}
	parent := listParent(args[0], c.inSpace)
	logger(cfg).Info("fetching lists", parent.Kind.String(), parent.ID)
	page, err := svc.ListLists(ctx, parent)
	if err != nil {
		return fail(cfg, out, errOut, "listing lists: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, page)
	}
	entries := make([]output.Entry, len(page.Lists))
	for i, l := range page.Lists {
		entries[i] = output.Entry{ID: l.ID, Name: l.Name}
	}
	output.FormatEntries(out, "lists", entries)
	return exitcode.Success
}

// ListCreateCmd creates a list in a folder, or directly in a space.
type ListCreateCmd struct {
	inSpace bool
}

func (c *ListCreateCmd) Name() string      { return "list create" }
func (c *ListCreateCmd) Aliases() []string { return []string{"create-list"} }
func (c *ListCreateCmd) Synopsis() string  { return "Create a list" }
func (c *ListCreateCmd) Usage() string {
	return "clickup list create [--in-space] <folder-id|space-id> <name...>"
}
func (c *ListCreateCmd) NeedsAuth() bool { return true }

func (c *ListCreateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.inSpace, "in-space", false, "")
}

func (c *ListCreateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	parentID, name, ok := parentAndName(args)
	if !ok {
		return fail(cfg, out, errOut, "parent id and list name required")
	}
	parent := listParent(parentID, c.inSpace)
	logger(cfg).Info("creating list", parent.Kind.String(), parent.ID, "name", name)
	list, err := svc.CreateList(ctx, parent, name)
	if err != nil {
		return fail(cfg, out, errOut, "creating list: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, list)
	}
	output.FormatCreated(out, "List", list.ID, list.Name)
	return exitcode.Success
}
