package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
)

// FakeAPI is an in-memory ClickUp API v2 served over HTTP for tests.
// Documents are kept as generic JSON maps so responses look like the real API.
type FakeAPI struct {
	Server *httptest.Server

	// CustomIDAfterGets delays a new task's custom_id until it has been
	// fetched this many times. Zero assigns it at creation.
	CustomIDAfterGets int

	// NoCustomIDs disables custom ids entirely.
	NoCustomIDs bool

	mu       sync.Mutex
	key      string
	tasks    []map[string]any
	gets     map[string]int
	spaces   map[string][]map[string]any // team id -> spaces
	folders  map[string][]map[string]any // space id -> folders
	lists    map[string][]map[string]any // "folder:<id>" or "space:<id>" -> lists
	teams    []map[string]any
	failures map[string]failure // "METHOD path" -> canned error
	requests []string
	bodies   []string
	seq      int
}

type failure struct {
	status int
	body   string
}

// NewFakeAPI starts a fake API accepting key and stops it when the test ends.
func NewFakeAPI(t *testing.T, key string) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		key:      key,
		gets:     make(map[string]int),
		spaces:   make(map[string][]map[string]any),
		folders:  make(map[string][]map[string]any),
		lists:    make(map[string][]map[string]any),
		failures: make(map[string]failure),
	}
	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the server.
func (f *FakeAPI) URL() string { return f.Server.URL }

// Fail makes every request matching method and path return status and body.
func (f *FakeAPI) Fail(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = failure{status: status, body: body}
}

// Requests returns "METHOD path" for every request received, in order.
func (f *FakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// Bodies returns the raw request bodies, in order ("" when none).
func (f *FakeAPI) Bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...)
}

// AddTeam seeds a team.
func (f *FakeAPI) AddTeam(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams = append(f.teams, map[string]any{"id": id, "name": name, "color": "#7b68ee", "members": []any{}})
}

// AddTask seeds a task in a list and returns its id.
func (f *FakeAPI) AddTask(listID, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := f.newTask(listID, map[string]any{"name": name})
	f.assignCustomID(task)
	return task["id"].(string)
}

func (f *FakeAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(f.record)
	r.Use(f.auth)
	r.Use(f.faults)

	r.Route("/api/v2", func(r chi.Router) {
		r.Get("/team", f.listTeams)
		r.Get("/team/{teamID}/task", f.listTeamTasks)
		r.Get("/team/{teamID}/space", f.listSpaces)
		r.Post("/team/{teamID}/space", f.createSpace)

		r.Get("/list/{listID}/task", f.listTasks)
		r.Post("/list/{listID}/task", f.createTask)
		r.Get("/task/{taskID}", f.getTask)
		r.Put("/task/{taskID}", f.updateTask)
		r.Delete("/task/{taskID}", f.deleteTask)

		r.Get("/space/{spaceID}/folder", f.listFolders)
		r.Post("/space/{spaceID}/folder", f.createFolder)
		r.Get("/space/{spaceID}/list", f.listLists("space", "spaceID"))
		r.Post("/space/{spaceID}/list", f.createList("space", "spaceID"))
		r.Get("/folder/{folderID}/list", f.listLists("folder", "folderID"))
		r.Post("/folder/{folderID}/list", f.createList("folder", "folderID"))
	})
	return r
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.EscapedPath())
		f.bodies = append(f.bodies, string(body))
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != f.key {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"err": "Token invalid", "ECODE": "OAUTH_025"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail, ok := f.failures[r.Method+" "+r.URL.EscapedPath()]
		f.mu.Unlock()
		if ok {
			w.WriteHeader(fail.status)
			w.Write([]byte(fail.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) listTeams(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"teams": nonNil(f.teams)})
}

func (f *FakeAPI) listTeamTasks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	teamID := chi.URLParam(r, "teamID")
	var out []map[string]any
	for _, t := range f.tasks {
		if t["team_id"] == teamID {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": nonNil(out)})
}

func (f *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listID := chi.URLParam(r, "listID")
	var out []map[string]any
	for _, t := range f.tasks {
		if t["list"].(map[string]any)["id"] == listID {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": nonNil(out)})
}

func (f *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"err": "Invalid JSON", "ECODE": "INPUT_001"})
		return
	}
	if name, _ := req["name"].(string); strings.TrimSpace(name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"err": "Task name invalid", "ECODE": "INPUT_005"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	task := f.newTask(chi.URLParam(r, "listID"), req)
	if f.CustomIDAfterGets == 0 {
		f.assignCustomID(task)
	}
	writeJSON(w, http.StatusOK, task)
}

func (f *FakeAPI) getTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := f.findTask(chi.URLParam(r, "taskID"))
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"err": "Task not found, deleted", "ECODE": "ITEM_013"})
		return
	}
	id := task["id"].(string)
	f.gets[id]++
	if f.gets[id] >= f.CustomIDAfterGets {
		f.assignCustomID(task)
	}
	writeJSON(w, http.StatusOK, task)
}

func (f *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"err": "Invalid JSON", "ECODE": "INPUT_001"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	task := f.findTask(chi.URLParam(r, "taskID"))
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"err": "Task not found, deleted", "ECODE": "ITEM_013"})
		return
	}
	applyTaskFields(task, req)
	writeJSON(w, http.StatusOK, task)
}

func (f *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := chi.URLParam(r, "taskID")
	for i, t := range f.tasks {
		if t["id"] == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"err": "Task not found, deleted", "ECODE": "ITEM_013"})
}

func (f *FakeAPI) listSpaces(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"spaces": nonNil(f.spaces[chi.URLParam(r, "teamID")])})
}

func (f *FakeAPI) createSpace(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	teamID := chi.URLParam(r, "teamID")
	space := map[string]any{"id": f.nextNumericID(), "name": name, "private": false, "archived": false}
	f.spaces[teamID] = append(f.spaces[teamID], space)
	writeJSON(w, http.StatusOK, space)
}

func (f *FakeAPI) listFolders(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"folders": nonNil(f.folders[chi.URLParam(r, "spaceID")])})
}

func (f *FakeAPI) createFolder(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	spaceID := chi.URLParam(r, "spaceID")
	folder := map[string]any{
		"id": f.nextNumericID(), "name": name, "hidden": false, "archived": false,
		"space": map[string]any{"id": spaceID},
	}
	f.folders[spaceID] = append(f.folders[spaceID], folder)
	writeJSON(w, http.StatusOK, folder)
}

func (f *FakeAPI) listLists(kind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"lists": nonNil(f.lists[kind+":"+chi.URLParam(r, param)])})
	}
}

func (f *FakeAPI) createList(kind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := decodeName(w, r)
		if !ok {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		parentID := chi.URLParam(r, param)
		list := map[string]any{
			"id": f.nextNumericID(), "name": name, "archived": false,
			kind: map[string]any{"id": parentID},
		}
		f.lists[kind+":"+parentID] = append(f.lists[kind+":"+parentID], list)
		writeJSON(w, http.StatusOK, list)
	}
}

// newTask must be called with f.mu held.
func (f *FakeAPI) newTask(listID string, req map[string]any) map[string]any {
	id := strings.ToLower(ulid.Make().String())
	task := map[string]any{
		"id":           id,
		"custom_id":    nil,
		"name":         "",
		"status":       map[string]any{"status": "to do", "color": "#d3d3d3", "type": "open"},
		"priority":     nil,
		"assignees":    []any{},
		"tags":         []any{},
		"due_date":     nil,
		"date_created": "1700000000000",
		"date_updated": "1700000000000",
		"url":          "https://app.clickup.com/t/" + id,
		"team_id":      "9000",
		"list":         map[string]any{"id": listID, "name": "List " + listID},
	}
	applyTaskFields(task, req)
	f.tasks = append(f.tasks, task)
	return task
}

// assignCustomID must be called with f.mu held.
func (f *FakeAPI) assignCustomID(task map[string]any) {
	if f.NoCustomIDs || task["custom_id"] != nil {
		return
	}
	f.seq++
	task["custom_id"] = fmt.Sprintf("DEV-%d", f.seq)
}

func (f *FakeAPI) findTask(id string) map[string]any {
	for _, t := range f.tasks {
		if t["id"] == id {
			return t
		}
	}
	return nil
}

func (f *FakeAPI) nextNumericID() string {
	f.seq++
	return fmt.Sprintf("%d", 90000+f.seq)
}

// priorityNames follows the CLI mapping (low=1 .. urgent=4).
var priorityNames = map[float64]string{1: "low", 2: "normal", 3: "high", 4: "urgent"}

// applyTaskFields copies request fields onto a task document in API shape.
func applyTaskFields(task, req map[string]any) {
	for k, v := range req {
		switch k {
		case "name", "description", "markdown_description":
			if k == "markdown_description" {
				k = "description"
			}
			task[k] = v
		case "status":
			task["status"] = map[string]any{"status": v, "color": "#4194f6", "type": "custom"}
		case "priority":
			n, _ := v.(float64)
			task["priority"] = map[string]any{"id": fmt.Sprintf("%d", int(n)), "priority": priorityNames[n], "color": "#f50000"}
		case "assignees":
			var users []any
			for _, id := range v.([]any) {
				users = append(users, map[string]any{"id": id, "username": fmt.Sprintf("user%v", id)})
			}
			task["assignees"] = nonNilAny(users)
		case "tags":
			var tags []any
			for _, name := range v.([]any) {
				tags = append(tags, map[string]any{"name": name})
			}
			task["tags"] = nonNilAny(tags)
		case "due_date":
			task["due_date"] = fmt.Sprintf("%.0f", v)
		}
	}
}

func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"err": "Name invalid", "ECODE": "INPUT_005"})
		return "", false
	}
	return req.Name, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func nonNil(v []map[string]any) []map[string]any {
	if v == nil {
		return []map[string]any{}
	}
	return v
}

func nonNilAny(v []any) []any {
	if v == nil {
		return []any{}
	}
	return v
}
