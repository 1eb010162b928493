package service

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Timestamp is a millisecond epoch the API sends as a string, a number or null.
type Timestamp string

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*ts = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*ts = Timestamp(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*ts = Timestamp(n.String())
	}
	return nil
}

// Millis returns the timestamp in milliseconds and whether it is set.
func (ts Timestamp) Millis() (int64, bool) {
	if ts == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(string(ts), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// User is a workspace member.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// DisplayName prefers the username and falls back to the email.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Ref is a lightweight reference to a parent entity.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TaskStatus is a task's workflow status.
type TaskStatus struct {
	Status string `json:"status"`
	Color  string `json:"color,omitempty"`
	Type   string `json:"type,omitempty"`
}

// TaskPriority is the priority as the API reports it.
type TaskPriority struct {
	ID       string `json:"id,omitempty"`
	Priority string `json:"priority"`
	Color    string `json:"color,omitempty"`
}

// Tag is a task tag.
type Tag struct {
	Name string `json:"name"`
}

// Task represents a single task.
// Raw holds the server's document; it is what --json prints.
type Task struct {
	ID          string        `json:"id"`
	CustomID    string        `json:"custom_id,omitempty"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      TaskStatus    `json:"status"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	Assignees   []User        `json:"assignees,omitempty"`
	Tags        []Tag         `json:"tags,omitempty"`
	DueDate     Timestamp     `json:"due_date,omitempty"`
	DateCreated Timestamp     `json:"date_created,omitempty"`
	DateUpdated Timestamp     `json:"date_updated,omitempty"`
	URL         string        `json:"url,omitempty"`
	TeamID      string        `json:"team_id,omitempty"`
	List        *Ref          `json:"list,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Space is a top-level container in a team.
type Space struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Private  bool   `json:"private"`
	Archived bool   `json:"archived"`

	Raw json.RawMessage `json:"-"`
}

// Folder groups lists inside a space.
type Folder struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hidden   bool   `json:"hidden"`
	Archived bool   `json:"archived"`
	Space    *Ref   `json:"space,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// List holds tasks; its parent is a folder or, for folderless lists, a space.
type List struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content,omitempty"`
	Archived bool   `json:"archived"`
	Folder   *Ref   `json:"folder,omitempty"`
	Space    *Ref   `json:"space,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Member wraps a user in a team's member list.
type Member struct {
	User User `json:"user"`
}

// Team is a workspace.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Color   string   `json:"color,omitempty"`
	Members []Member `json:"members,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Listing responses. Raw holds the whole server response, so fields beside
// the item array survive --json.

type TaskPage struct {
	Tasks []Task `json:"tasks"`

	Raw json.RawMessage `json:"-"`
}

type SpacePage struct {
	Spaces []Space `json:"spaces"`

	Raw json.RawMessage `json:"-"`
}

type FolderPage struct {
	Folders []Folder `json:"folders"`

	Raw json.RawMessage `json:"-"`
}

type ListPage struct {
	Lists []List `json:"lists"`

	Raw json.RawMessage `json:"-"`
}

type TeamPage struct {
	Teams []Team `json:"teams"`

	Raw json.RawMessage `json:"-"`
}

// ParentKind selects which container a list lives in.
type ParentKind int

const (
	ParentFolder ParentKind = iota
	ParentSpace
)

func (k ParentKind) String() string {
	if k == ParentSpace {
		return "space"
	}
	return "folder"
}

// ListParent identifies the container of a list.
type ListParent struct {
	Kind ParentKind
	ID   string
}

// The entity types keep their raw document on decode and emit it verbatim on
// encode, so JSON output is exactly what the server returned.

func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	return decodeRaw(b, (*plain)(t), &t.Raw)
}

func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	return encodeRaw(t.Raw, plain(t))
}

func (s *Space) UnmarshalJSON(b []byte) error {
	type plain Space
	return decodeRaw(b, (*plain)(s), &s.Raw)
}

func (s Space) MarshalJSON() ([]byte, error) {
	type plain Space
	return encodeRaw(s.Raw, plain(s))
}

func (f *Folder) UnmarshalJSON(b []byte) error {
	type plain Folder
	return decodeRaw(b, (*plain)(f), &f.Raw)
}

func (f Folder) MarshalJSON() ([]byte, error) {
	type plain Folder
	return encodeRaw(f.Raw, plain(f))
}

func (l *List) UnmarshalJSON(b []byte) error {
	type plain List
	return decodeRaw(b, (*plain)(l), &l.Raw)
}

func (l List) MarshalJSON() ([]byte, error) {
	type plain List
	return encodeRaw(l.Raw, plain(l))
}

func (t *Team) UnmarshalJSON(b []byte) error {
	type plain Team
	return decodeRaw(b, (*plain)(t), &t.Raw)
}

func (t Team) MarshalJSON() ([]byte, error) {
	type plain Team
	return encodeRaw(t.Raw, plain(t))
}

func decodeRaw(b []byte, v any, raw *json.RawMessage) error {
	if err := json.Unmarshal(b, v); err != nil {
		return err
	}
	*raw = append(json.RawMessage(nil), b...)
	return nil
}

func encodeRaw(raw json.RawMessage, v any) ([]byte, error) {
	if len(raw) > 0 {
		return raw, nil
	}
	return json.Marshal(v)
}

func (p *TaskPage) UnmarshalJSON(b []byte) error {
	type plain TaskPage
	return decodeRaw(b, (*plain)(p), &p.Raw)
}

func (p TaskPage) MarshalJSON() ([]byte, error) {
	type plain TaskPage
	return encodeRaw(p.Raw, plain(p))
}

func (p *SpacePage) UnmarshalJSON(b []byte) error {
	type plain SpacePage
	return decodeRaw(b, (*plain)(p), &p.Raw)
}

func (p SpacePage) MarshalJSON() ([]byte, error) {
	type plain SpacePage
	return encodeRaw(p.Raw, plain(p))
}

func (p *FolderPage) UnmarshalJSON(b []byte) error {
	type plain FolderPage
	return decodeRaw(b, (*plain)(p), &p.Raw)
}

func (p FolderPage) MarshalJSON() ([]byte, error) {
	type plain FolderPage
	return encodeRaw(p.Raw, plain(p))
}

func (p *ListPage) UnmarshalJSON(b []byte) error {
	type plain ListPage
	return decodeRaw(b, (*plain)(p), &p.Raw)
}

func (p ListPage) MarshalJSON() ([]byte, error) {
	type plain ListPage
	return encodeRaw(p.Raw, plain(p))
}

func (p *TeamPage) UnmarshalJSON(b []byte) error {
	type plain TeamPage
	return decodeRaw(b, (*plain)(p), &p.Raw)
}

func (p TeamPage) MarshalJSON() ([]byte, error) {
	type plain TeamPage
	return encodeRaw(p.Raw, plain(p))
}
