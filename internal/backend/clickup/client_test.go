package clickup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"clickup/internal/api"
	"clickup/internal/config"
	"clickup/internal/service"
	"clickup/internal/testutil"
)

const testKey = "pk_test"

func newTestClient(t *testing.T) (*Client, *testutil.FakeAPI, *[]time.Duration) {
	t.Helper()
	fake := testutil.NewFakeAPI(t, testKey)
	var slept []time.Duration
	c := NewWithExecutor(api.New(api.Config{APIKey: testKey, BaseURL: fake.URL()}), Options{
		PollAttempts: 4,
		PollDelay:    5 * time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	})
	return c, fake, &slept
}

func assertRequests(t *testing.T, fake *testutil.FakeAPI, want ...string) {
	t.Helper()
	got := fake.Requests()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("requests:\n  got  %q\n  want %q", got, want)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	cfg := &config.Config{BaseURL: config.DefaultBaseURL}
	if _, err := New(context.Background(), cfg); !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestListTasks(t *testing.T) {
	c, fake, _ := newTestClient(t)
	id := fake.AddTask("901", "Write docs")
	fake.AddTask("902", "Elsewhere")

	page, err := c.ListTasks(context.Background(), "901")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	tasks := page.Tasks
	if len(tasks) != 1 || tasks[0].ID != id || tasks[0].Name != "Write docs" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if tasks[0].CustomID != "DEV-1" || tasks[0].Status.Status != "to do" {
		t.Errorf("unexpected fields: %+v", tasks[0])
	}
	if len(tasks[0].Raw) == 0 {
		t.Error("expected raw document to be kept")
	}
	assertRequests(t, fake, "GET /api/v2/list/901/task")
}

func TestListTasks_KeepsWholeResponse(t *testing.T) {
	c, fake, _ := newTestClient(t)
	doc := `{"tasks":[{"id":"86a001","name":"A"}],"last_page":true}`
	fake.Fail(http.MethodGet, "/api/v2/list/901/task", http.StatusOK, doc)

	page, err := c.ListTasks(context.Background(), "901")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(page.Tasks) != 1 || page.Tasks[0].ID != "86a001" {
		t.Fatalf("unexpected tasks: %+v", page.Tasks)
	}
	out, err := json.Marshal(page)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != doc {
		t.Errorf("expected the whole response, got %s", out)
	}
}

func TestListTeamTasks(t *testing.T) {
	c, fake, _ := newTestClient(t)
	fake.AddTask("901", "A")
	fake.AddTask("902", "B")

	page, err := c.ListTeamTasks(context.Background(), "9000")
	if err != nil {
		t.Fatalf("ListTeamTasks: %v", err)
	}
	if len(page.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(page.Tasks))
	}
	assertRequests(t, fake, "GET /api/v2/team/9000/task")
}

func TestGetTask_NotFound(t *testing.T) {
	c, fake, _ := newTestClient(t)

	_, err := c.GetTask(context.Background(), "missing1")
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
	if !strings.Contains(apiErr.Body, "ITEM_013") {
		t.Errorf("expected raw body, got %q", apiErr.Body)
	}
	if !api.IsNotFound(err) {
		t.Error("expected IsNotFound")
	}
	assertRequests(t, fake, "GET /api/v2/task/missing1")
}

func TestCreateTask_CustomIDInResponse(t *testing.T) {
	c, fake, slept := newTestClient(t)

	task, err := c.CreateTask(context.Background(), "901", service.TaskCreate{Name: "New"}, true)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.CustomID != "DEV-1" {
		t.Errorf("expected DEV-1, got %q", task.CustomID)
	}
	assertRequests(t, fake, "POST /api/v2/list/901/task")
	if len(*slept) != 0 {
		t.Errorf("expected no pauses, got %v", *slept)
	}
	if got := fake.Bodies()[0]; got != `{"name":"New"}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestCreateTask_WaitsForCustomID(t *testing.T) {
	c, fake, slept := newTestClient(t)
	fake.CustomIDAfterGets = 2

	task, err := c.CreateTask(context.Background(), "901", service.TaskCreate{Name: "New"}, true)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.CustomID != "DEV-1" {
		t.Errorf("expected DEV-1, got %q", task.CustomID)
	}
	reqs := fake.Requests()
	if len(reqs) != 3 {
		t.Fatalf("expected create plus 2 fetches, got %q", reqs)
	}
	if want := "GET /api/v2/task/" + task.ID; reqs[1] != want || reqs[2] != want {
		t.Errorf("expected fetches of %s, got %q", task.ID, reqs[1:])
	}
	if len(*slept) != 1 || (*slept)[0] != 5*time.Second {
		t.Errorf("expected one 5s pause, got %v", *slept)
	}
}

func TestCreateTask_NoWait(t *testing.T) {
	c, fake, slept := newTestClient(t)
	fake.CustomIDAfterGets = 2

	task, err := c.CreateTask(context.Background(), "901", service.TaskCreate{Name: "New"}, false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.CustomID != "" {
		t.Errorf("expected no custom id yet, got %q", task.CustomID)
	}
	assertRequests(t, fake, "POST /api/v2/list/901/task")
	if len(*slept) != 0 {
		t.Errorf("expected no pauses, got %v", *slept)
	}
}

func TestCreateTask_PollExhausted(t *testing.T) {
	c, fake, slept := newTestClient(t)
	fake.CustomIDAfterGets = 1
	fake.NoCustomIDs = true

	task, err := c.CreateTask(context.Background(), "901", service.TaskCreate{Name: "New"}, true)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == "" || task.CustomID != "" {
		t.Errorf("expected the unchecked final fetch, got %+v", task)
	}
	// create, 4 attempts, 1 final fetch
	if n := len(fake.Requests()); n != 6 {
		t.Errorf("expected 6 requests, got %d: %q", n, fake.Requests())
	}
	if len(*slept) != 3 {
		t.Errorf("expected 3 pauses, got %v", *slept)
	}
}

// scriptedDoer answers creates with a bare task and every fetch with err.
type scriptedDoer struct {
	err   error
	calls []string
}

func (d *scriptedDoer) Do(ctx context.Context, req api.Request) (json.RawMessage, error) {
	d.calls = append(d.calls, req.Method+" "+req.Path)
	if req.Method == http.MethodPost {
		return json.RawMessage(`{"id":"86abc","name":"New"}`), nil
	}
	return nil, d.err
}

func TestCreateTask_FetchFailsAfterCreate(t *testing.T) {
	fetchErr := &api.APIError{StatusCode: http.StatusInternalServerError, Body: `{"err":"boom"}`}
	doer := &scriptedDoer{err: fetchErr}
	c := NewWithExecutor(doer, Options{
		PollAttempts: 2,
		Sleep:        func(context.Context, time.Duration) error { return nil },
	})

	_, err := c.CreateTask(context.Background(), "901", service.TaskCreate{Name: "New"}, true)
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr != fetchErr {
		t.Fatalf("expected the fetch error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "task 86abc created, but fetching it failed: ") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(doer.calls) != 3 {
		t.Errorf("expected create plus 2 fetches, got %q", doer.calls)
	}
}

func TestCreateTask_MissingIDIsParseError(t *testing.T) {
	c := NewWithExecutor(doerFunc(func(ctx context.Context, req api.Request) (json.RawMessage, error) {
		return json.RawMessage(`{"name":"New"}`), nil
	}), Options{})

	_, err := c.CreateTask(context.Background(), "901", service.TaskCreate{Name: "New"}, true)
	if api.Kind(err) != api.KindParse {
		t.Fatalf("expected parse error, got %v", err)
	}
}

type doerFunc func(ctx context.Context, req api.Request) (json.RawMessage, error)

func (f doerFunc) Do(ctx context.Context, req api.Request) (json.RawMessage, error) { return f(ctx, req) }

func TestCreateTask_RejectedByServer(t *testing.T) {
	c, fake, _ := newTestClient(t)
	fake.Fail(http.MethodPost, "/api/v2/list/901/task", http.StatusBadRequest, `{"err":"Task name invalid","ECODE":"INPUT_005"}`)

	_, err := c.CreateTask(context.Background(), "901", service.TaskCreate{Name: "x"}, true)
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if apiErr.Body != `{"err":"Task name invalid","ECODE":"INPUT_005"}` {
		t.Errorf("expected raw body, got %q", apiErr.Body)
	}
}

func TestUpdateTask_Priority(t *testing.T) {
	c, fake, _ := newTestClient(t)
	id := fake.AddTask("901", "A")

	u, err := service.ParseTaskUpdate("priority", "urgent")
	if err != nil {
		t.Fatal(err)
	}
	task, err := c.UpdateTask(context.Background(), id, u)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Priority == nil || task.Priority.ID != "4" || task.Priority.Priority != "urgent" {
		t.Fatalf("expected urgent priority in response: %s", task.Raw)
	}
	assertRequests(t, fake, "PUT /api/v2/task/"+id)
	if got := fake.Bodies()[0]; got != `{"priority":4}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestUpdateTask_Name(t *testing.T) {
	c, fake, _ := newTestClient(t)
	id := fake.AddTask("901", "Old")

	task, err := c.UpdateTask(context.Background(), id, service.NameUpdate{Name: "New"})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Name != "New" {
		t.Errorf("expected renamed task, got %q", task.Name)
	}
}

func TestDeleteTask(t *testing.T) {
	c, fake, _ := newTestClient(t)
	id := fake.AddTask("901", "A")

	if err := c.DeleteTask(context.Background(), id); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := c.DeleteTask(context.Background(), id); !api.IsNotFound(err) {
		t.Errorf("expected 404 on second delete, got %v", err)
	}
	assertRequests(t, fake, "DELETE /api/v2/task/"+id, "DELETE /api/v2/task/"+id)
}

func TestSpacesAndFolders(t *testing.T) {
	c, fake, _ := newTestClient(t)
	ctx := context.Background()

	space, err := c.CreateSpace(ctx, "9000", "Engineering")
	if err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}
	spacePage, err := c.ListSpaces(ctx, "9000")
	if err != nil {
		t.Fatalf("ListSpaces: %v", err)
	}
	spaces := spacePage.Spaces
	if len(spaces) != 1 || spaces[0].ID != space.ID || spaces[0].Name != "Engineering" {
		t.Fatalf("unexpected spaces: %+v", spaces)
	}

	folder, err := c.CreateFolder(ctx, space.ID, "Backend")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	folderPage, err := c.ListFolders(ctx, space.ID)
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}
	folders := folderPage.Folders
	if len(folders) != 1 || folders[0].ID != folder.ID {
		t.Fatalf("unexpected folders: %+v", folders)
	}

	assertRequests(t, fake,
		"POST /api/v2/team/9000/space",
		"GET /api/v2/team/9000/space",
		"POST /api/v2/space/"+space.ID+"/folder",
		"GET /api/v2/space/"+space.ID+"/folder",
	)
	if got := fake.Bodies()[0]; got != `{"name":"Engineering"}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestLists_ParentPaths(t *testing.T) {
	c, fake, _ := newTestClient(t)
	ctx := context.Background()
	inFolder := service.ListParent{Kind: service.ParentFolder, ID: "300"}
	inSpace := service.ListParent{Kind: service.ParentSpace, ID: "200"}

	if _, err := c.CreateList(ctx, inFolder, "Sprint 1"); err != nil {
		t.Fatalf("CreateList(folder): %v", err)
	}
	if _, err := c.CreateList(ctx, inSpace, "Backlog"); err != nil {
		t.Fatalf("CreateList(space): %v", err)
	}
	page, err := c.ListLists(ctx, inFolder)
	if err != nil {
		t.Fatalf("ListLists(folder): %v", err)
	}
	if lists := page.Lists; len(lists) != 1 || lists[0].Name != "Sprint 1" {
		t.Errorf("unexpected folder lists: %+v", lists)
	}
	page, err = c.ListLists(ctx, inSpace)
	if err != nil {
		t.Fatalf("ListLists(space): %v", err)
	}
	if lists := page.Lists; len(lists) != 1 || lists[0].Name != "Backlog" {
		t.Errorf("unexpected space lists: %+v", lists)
	}

	assertRequests(t, fake,
		"POST /api/v2/folder/300/list",
		"POST /api/v2/space/200/list",
		"GET /api/v2/folder/300/list",
		"GET /api/v2/space/200/list",
	)
}

func TestListTeams(t *testing.T) {
	c, fake, _ := newTestClient(t)
	fake.AddTeam("9000", "Acme")

	page, err := c.ListTeams(context.Background())
	if err != nil {
		t.Fatalf("ListTeams: %v", err)
	}
	teams := page.Teams
	if len(teams) != 1 || teams[0].ID != "9000" || teams[0].Name != "Acme" {
		t.Fatalf("unexpected teams: %+v", teams)
	}
	assertRequests(t, fake, "GET /api/v2/team")
}

func TestWrongShapeIsParseError(t *testing.T) {
	c, fake, _ := newTestClient(t)
	fake.Fail(http.MethodGet, "/api/v2/team", http.StatusOK, `{"teams":"nope"}`)

	_, err := c.ListTeams(context.Background())
	var parseErr *api.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Body != `{"teams":"nope"}` {
		t.Errorf("expected raw body, got %q", parseErr.Body)
	}
}

func TestWrongKeyIsAPIError(t *testing.T) {
	fake := testutil.NewFakeAPI(t, testKey)
	c := NewWithExecutor(api.New(api.Config{APIKey: "pk_wrong", BaseURL: fake.URL()}), Options{})

	_, err := c.ListTeams(context.Background())
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}

func TestIDsAreEscaped(t *testing.T) {
	c, fake, _ := newTestClient(t)

	_, _ = c.GetTask(context.Background(), "a/b")
	assertRequests(t, fake, "GET /api/v2/task/a%2Fb")
}
