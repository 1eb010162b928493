// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"clickup/internal/api"
	"clickup/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.RWMutex
	tasks   []service.Task
	spaces  map[string][]service.Space  // team id -> spaces
	folders map[string][]service.Folder // space id -> folders
	lists   map[service.ListParent][]service.List
	teams   []service.Team
	pages   map[string]json.RawMessage // "list:<id>" -> raw listing response
	seq     int

	// Calls records method names in call order.
	Calls []string

	// LastCreate and LastUpdate capture the most recent write requests.
	LastCreate service.TaskCreate
	LastWait   bool
	LastUpdate service.TaskUpdate

	// Error injection for testing
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr map[string]error // task id -> error
	ListErr       error            // spaces, folders, lists, teams
	CreateErr     error            // spaces, folders, lists
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		spaces:        make(map[string][]service.Space),
		folders:       make(map[string][]service.Folder),
		lists:         make(map[service.ListParent][]service.List),
		pages:         make(map[string]json.RawMessage),
		DeleteTaskErr: make(map[string]error),
	}
}

// AddTask adds a task to a list.
func (f *FakeService) AddTask(listID string, task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.List = &service.Ref{ID: listID, Name: "List " + listID}
	f.tasks = append(f.tasks, task)
}

// SetTaskListResponse makes ListTasks decode doc as the server's response
// for listID instead of using the seeded tasks.
func (f *FakeService) SetTaskListResponse(listID, doc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages["list:"+listID] = json.RawMessage(doc)
}

// AddSpace adds a space to a team.
func (f *FakeService) AddSpace(teamID string, space service.Space) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spaces[teamID] = append(f.spaces[teamID], space)
}

// AddFolder adds a folder to a space.
func (f *FakeService) AddFolder(spaceID string, folder service.Folder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders[spaceID] = append(f.folders[spaceID], folder)
}

// AddList adds a list under parent.
func (f *FakeService) AddList(parent service.ListParent, list service.List) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[parent] = append(f.lists[parent], list)
}

// AddTeam adds a team.
func (f *FakeService) AddTeam(team service.Team) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams = append(f.teams, team)
}

// HasTask reports whether a task id still exists.
func (f *FakeService) HasTask(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (f *FakeService) record(name string) {
	f.Calls = append(f.Calls, name)
}

func notFound() error {
	return &api.APIError{StatusCode: 404, Body: `{"err":"Task not found, deleted","ECODE":"ITEM_013"}`}
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, listID string) (service.TaskPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return service.TaskPage{}, f.ListTasksErr
	}
	if raw, ok := f.pages["list:"+listID]; ok {
		var page service.TaskPage
		err := json.Unmarshal(raw, &page)
		return page, err
	}
	out := []service.Task{}
	for _, t := range f.tasks {
		if t.List != nil && t.List.ID == listID {
			out = append(out, t)
		}
	}
	return service.TaskPage{Tasks: out}, nil
}

// ListTeamTasks implements service.Service.
func (f *FakeService) ListTeamTasks(ctx context.Context, teamID string) (service.TaskPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTeamTasks")
	if f.ListTasksErr != nil {
		return service.TaskPage{}, f.ListTasksErr
	}
	return service.TaskPage{Tasks: append([]service.Task{}, f.tasks...)}, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	for _, t := range f.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return service.Task{}, notFound()
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, listID string, req service.TaskCreate, wait bool) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTask")
	f.LastCreate = req
	f.LastWait = wait
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.seq++
	task := service.Task{
		ID:     fmt.Sprintf("86a%05d", f.seq),
		Name:   req.Name,
		Status: service.TaskStatus{Status: "to do"},
		URL:    fmt.Sprintf("https://app.clickup.com/t/86a%05d", f.seq),
		List:   &service.Ref{ID: listID},
	}
	if wait {
		task.CustomID = fmt.Sprintf("DEV-%d", f.seq)
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, taskID string, u service.TaskUpdate) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTask")
	f.LastUpdate = u
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	for i, t := range f.tasks {
		if t.ID != taskID {
			continue
		}
		switch u := u.(type) {
		case service.NameUpdate:
			f.tasks[i].Name = u.Name
		case service.DescriptionUpdate:
			f.tasks[i].Description = u.Description
		case service.StatusUpdate:
			f.tasks[i].Status = service.TaskStatus{Status: u.Status}
		}
		return f.tasks[i], nil
	}
	return service.Task{}, notFound()
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTask")
	if err := f.DeleteTaskErr[taskID]; err != nil {
		return err
	}
	for i, t := range f.tasks {
		if t.ID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return notFound()
}

// ListSpaces implements service.Service.
func (f *FakeService) ListSpaces(ctx context.Context, teamID string) (service.SpacePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListSpaces")
	if f.ListErr != nil {
		return service.SpacePage{}, f.ListErr
	}
	return service.SpacePage{Spaces: append([]service.Space{}, f.spaces[teamID]...)}, nil
}

// CreateSpace implements service.Service.
func (f *FakeService) CreateSpace(ctx context.Context, teamID, name string) (service.Space, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSpace")
	if f.CreateErr != nil {
		return service.Space{}, f.CreateErr
	}
	f.seq++
	space := service.Space{ID: fmt.Sprintf("%d", 90000+f.seq), Name: name}
	f.spaces[teamID] = append(f.spaces[teamID], space)
	return space, nil
}

// ListFolders implements service.Service.
func (f *FakeService) ListFolders(ctx context.Context, spaceID string) (service.FolderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListFolders")
	if f.ListErr != nil {
		return service.FolderPage{}, f.ListErr
	}
	return service.FolderPage{Folders: append([]service.Folder{}, f.folders[spaceID]...)}, nil
}

// CreateFolder implements service.Service.
func (f *FakeService) CreateFolder(ctx context.Context, spaceID, name string) (service.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateFolder")
	if f.CreateErr != nil {
		return service.Folder{}, f.CreateErr
	}
	f.seq++
	folder := service.Folder{ID: fmt.Sprintf("%d", 90000+f.seq), Name: name, Space: &service.Ref{ID: spaceID}}
	f.folders[spaceID] = append(f.folders[spaceID], folder)
	return folder, nil
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context, parent service.ListParent) (service.ListPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListLists:" + parent.Kind.String())
	if f.ListErr != nil {
		return service.ListPage{}, f.ListErr
	}
	return service.ListPage{Lists: append([]service.List{}, f.lists[parent]...)}, nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, parent service.ListParent, name string) (service.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateList:" + parent.Kind.String())
	if f.CreateErr != nil {
		return service.List{}, f.CreateErr
	}
	f.seq++
	list := service.List{ID: fmt.Sprintf("%d", 90000+f.seq), Name: name}
	f.lists[parent] = append(f.lists[parent], list)
	return list, nil
}

// ListTeams implements service.Service.
func (f *FakeService) ListTeams(ctx context.Context) (service.TeamPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTeams")
	if f.ListErr != nil {
		return service.TeamPage{}, f.ListErr
	}
	return service.TeamPage{Teams: append([]service.Team{}, f.teams...)}, nil
}

var _ service.Service = (*FakeService)(nil)
