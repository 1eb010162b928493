// Package service defines the backend-agnostic interface for ClickUp operations.
package service

import "context"

// Service defines the operations the commands need.
// All ClickUp API calls go through this interface; commands never build
// requests themselves. Every method issues at most one request, except
// CreateTask when it waits for the custom id.
type Service interface {
	// ListTasks returns the tasks of a list.
	ListTasks(ctx context.Context, listID string) (TaskPage, error)

	// ListTeamTasks returns the tasks of every list in a team.
	ListTeamTasks(ctx context.Context, teamID string) (TaskPage, error)

	// GetTask returns one task by id.
	GetTask(ctx context.Context, taskID string) (Task, error)

	// CreateTask creates a task in a list. When wait is true and the
	// creation response lacks a custom id, it polls until the id appears
	// or the poll budget is spent, returning the best state it saw.
	CreateTask(ctx context.Context, listID string, req TaskCreate, wait bool) (Task, error)

	// UpdateTask changes one property of a task.
	UpdateTask(ctx context.Context, taskID string, u TaskUpdate) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, taskID string) error

	ListSpaces(ctx context.Context, teamID string) (SpacePage, error)
	CreateSpace(ctx context.Context, teamID, name string) (Space, error)

	ListFolders(ctx context.Context, spaceID string) (FolderPage, error)
	CreateFolder(ctx context.Context, spaceID, name string) (Folder, error)

	ListLists(ctx context.Context, parent ListParent) (ListPage, error)
	CreateList(ctx context.Context, parent ListParent, name string) (List, error)

	// ListTeams returns the teams (workspaces) the key can access.
	ListTeams(ctx context.Context) (TeamPage, error)
}
