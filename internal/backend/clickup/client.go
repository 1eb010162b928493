// Package clickup implements the service.Service interface using the ClickUp API v2.
package clickup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"clickup/internal/api"
	"clickup/internal/config"
	"clickup/internal/poll"
	"clickup/internal/service"
)

// Doer sends one request. *api.Executor implements it.
type Doer interface {
	Do(ctx context.Context, req api.Request) (json.RawMessage, error)
}

// Options tunes the custom id poll.
type Options struct {
	PollAttempts int
	PollDelay    time.Duration
	// Sleep overrides the pause between polls (tests).
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

// Client implements service.Service.
type Client struct {
	exec Doer
	opts Options
	log  *slog.Logger
}

// New creates a client from cfg. The API key must be set.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	exec := api.New(api.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout,
		AllowEmptyBody: cfg.AllowEmptyBody,
		Logger:         cfg.Logger,
	})
	return NewWithExecutor(exec, Options{
		PollAttempts: cfg.PollAttempts,
		PollDelay:    cfg.PollDelay,
		Logger:       cfg.Logger,
	}), nil
}

// NewWithExecutor creates a client around an existing executor.
func NewWithExecutor(exec Doer, opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{exec: exec, opts: opts, log: log}
}

// ListTasks returns the tasks of a list.
func (c *Client) ListTasks(ctx context.Context, listID string) (service.TaskPage, error) {
	var page service.TaskPage
	err := c.call(ctx, http.MethodGet, pathf("/api/v2/list/%s/task", listID), nil, &page)
	return page, err
}

// ListTeamTasks returns the tasks of a team.
func (c *Client) ListTeamTasks(ctx context.Context, teamID string) (service.TaskPage, error) {
	var page service.TaskPage
	err := c.call(ctx, http.MethodGet, pathf("/api/v2/team/%s/task", teamID), nil, &page)
	return page, err
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	var task service.Task
	if err := c.call(ctx, http.MethodGet, pathf("/api/v2/task/%s", taskID), nil, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// CreateTask creates a task and optionally waits for its custom id.
func (c *Client) CreateTask(ctx context.Context, listID string, req service.TaskCreate, wait bool) (service.Task, error) {
	var created service.Task
	if err := c.call(ctx, http.MethodPost, pathf("/api/v2/list/%s/task", listID), req, &created); err != nil {
		return service.Task{}, err
	}
	if created.ID == "" {
		return service.Task{}, &api.ParseError{Body: string(created.Raw), Reason: "creation response has no task id"}
	}
	if !wait || created.CustomID != "" {
		return created, nil
	}

	task, err := poll.WaitForField(ctx,
		func(ctx context.Context) (service.Task, error) { return c.GetTask(ctx, created.ID) },
		func(t service.Task) bool { return t.CustomID != "" },
		poll.Options{
			MaxAttempts: c.opts.PollAttempts,
			Delay:       c.opts.PollDelay,
			Field:       "custom_id",
			Sleep:       c.opts.Sleep,
			Logger:      c.log.With("task", created.ID),
		})
	if err != nil {
		return service.Task{}, fmt.Errorf("task %s created, but fetching it failed: %w", created.ID, err)
	}
	return task, nil
}

// UpdateTask applies one property change.
func (c *Client) UpdateTask(ctx context.Context, taskID string, u service.TaskUpdate) (service.Task, error) {
	var task service.Task
	if err := c.call(ctx, http.MethodPut, pathf("/api/v2/task/%s", taskID), service.UpdatePayload(u), &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.call(ctx, http.MethodDelete, pathf("/api/v2/task/%s", taskID), nil, nil)
}

// ListSpaces returns the spaces of a team.
func (c *Client) ListSpaces(ctx context.Context, teamID string) (service.SpacePage, error) {
	var page service.SpacePage
	err := c.call(ctx, http.MethodGet, pathf("/api/v2/team/%s/space", teamID), nil, &page)
	return page, err
}

// CreateSpace creates a space in a team.
func (c *Client) CreateSpace(ctx context.Context, teamID, name string) (service.Space, error) {
	var space service.Space
	err := c.call(ctx, http.MethodPost, pathf("/api/v2/team/%s/space", teamID), nameBody{Name: name}, &space)
	return space, err
}

// ListFolders returns the folders of a space.
func (c *Client) ListFolders(ctx context.Context, spaceID string) (service.FolderPage, error) {
	var page service.FolderPage
	err := c.call(ctx, http.MethodGet, pathf("/api/v2/space/%s/folder", spaceID), nil, &page)
	return page, err
}

// CreateFolder creates a folder in a space.
func (c *Client) CreateFolder(ctx context.Context, spaceID, name string) (service.Folder, error) {
	var folder service.Folder
	err := c.call(ctx, http.MethodPost, pathf("/api/v2/space/%s/folder", spaceID), nameBody{Name: name}, &folder)
	return folder, err
}

// ListLists returns the lists of a folder or the folderless lists of a space.
func (c *Client) ListLists(ctx context.Context, parent service.ListParent) (service.ListPage, error) {
	var page service.ListPage
	err := c.call(ctx, http.MethodGet, listsPath(parent), nil, &page)
	return page, err
}

// CreateList creates a list in a folder or directly in a space.
func (c *Client) CreateList(ctx context.Context, parent service.ListParent, name string) (service.List, error) {
	var list service.List
	err := c.call(ctx, http.MethodPost, listsPath(parent), nameBody{Name: name}, &list)
	return list, err
}

// ListTeams returns the teams the key can access.
func (c *Client) ListTeams(ctx context.Context) (service.TeamPage, error) {
	var page service.TeamPage
	err := c.call(ctx, http.MethodGet, "/api/v2/team", nil, &page)
	return page, err
}

type nameBody struct {
	Name string `json:"name"`
}

// call sends one request and decodes the result into out (when non-nil).
// A body that is valid JSON but the wrong shape is reported as a ParseError.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.exec.Do(ctx, api.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		reason := err.Error()
		if errors.As(err, &typeErr) {
			reason = fmt.Sprintf("unexpected %s for field %q", typeErr.Value, typeErr.Field)
		}
		return &api.ParseError{Body: string(raw), Reason: reason}
	}
	return nil
}

func listsPath(parent service.ListParent) string {
	if parent.Kind == service.ParentSpace {
		return pathf("/api/v2/space/%s/list", parent.ID)
	}
	return pathf("/api/v2/folder/%s/list", parent.ID)
}

// pathf formats a path, escaping the id segment.
func pathf(format, id string) string {
	return fmt.Sprintf(format, url.PathEscape(id))
}

var _ service.Service = (*Client)(nil)
