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
	Register(&FolderLsCmd{})
	Register(&FolderCreateCmd{})
}

// FolderLsCmd lists the folders of a space.
type FolderLsCmd struct{}

func (c *FolderLsCmd) Name() string      { return "folder ls" }
func (c *FolderLsCmd) Aliases() []string { return nil }
func (c *FolderLsCmd) Synopsis() string  { return "List folders in a space" }
func (c *FolderLsCmd) Usage() string     { return "clickup folder ls <space-id>" }
func (c *FolderLsCmd) NeedsAuth() bool   { return true }

func (c *FolderLsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *FolderLsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return fail(cfg, out, errOut, "space id required")
	}
	logger(cfg).Info("fetching folders", "space", args[0])
	page, err := svc.ListFolders(ctx, args[0])
	if err != nil {
		return fail(cfg, out, errOut, "listing folders: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, page)
	}
	entries := make([]output.Entry, len(page.Folders))
	for i, f := range page.Folders {
		entries[i] = output.Entry{ID: f.ID, Name: f.Name}
	}
	output.FormatEntries(out, "folders", entries)
	return exitcode.Success
}

// FolderCreateCmd creates a folder in a space.
type FolderCreateCmd struct{}

func (c *FolderCreateCmd) Name() string      { return "folder create" }
func (c *FolderCreateCmd) Aliases() []string { return []string{"create-folder"} }
func (c *FolderCreateCmd) Synopsis() string  { return "Create a folder" }
func (c *FolderCreateCmd) Usage() string     { return "clickup folder create <space-id> <name...>" }
func (c *FolderCreateCmd) NeedsAuth() bool   { return true }

func (c *FolderCreateCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *FolderCreateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	spaceID, name, ok := parentAndName(args)
	if !ok {
		return fail(cfg, out, errOut, "space id and folder name required")
	}
	logger(cfg).Info("creating folder", "space", spaceID, "name", name)
	folder, err := svc.CreateFolder(ctx, spaceID, name)
	if err != nil {
		return fail(cfg, out, errOut, "creating folder: %v", err)
	}
	if cfg.JSON {
		return printJSON(out, errOut, folder)
	}
	output.FormatCreated(out, "Folder", folder.ID, folder.Name)
	return exitcode.Success
}
