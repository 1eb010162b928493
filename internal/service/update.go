package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownProperty is returned for a task property outside UpdateProperties.
	ErrUnknownProperty = errors.New("unknown property")

	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidAssignee = errors.New("invalid assignee id")
	ErrInvalidDueDate  = errors.New("invalid due date")
)

// UpdateProperties lists the task properties that can be updated, in help order.
var UpdateProperties = []string{"name", "description", "status", "priority", "assignees", "due_date", "tags"}

// Priority is a numeric task priority. Names map low=1, normal=2, high=3,
// urgent=4.
type Priority int64

// ParsePriority accepts low, normal, high, urgent (any case) or a
// non-negative integer literal, which is passed through unchanged.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "low":
		return 1, nil
	case "normal":
		return 2, nil
	case "high":
		return 3, nil
	case "urgent":
		return 4, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (use low, normal, high, urgent or a number)", ErrInvalidPriority, s)
	}
	return Priority(n), nil
}

// DueDate is a due date in epoch milliseconds.
type DueDate int64

// ParseDueDate accepts YYYY-MM-DD (midnight UTC), RFC 3339, or a raw
// millisecond timestamp.
func ParseDueDate(s string) (DueDate, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return DueDate(n), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DueDate(t.UnixMilli()), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DueDate(t.UnixMilli()), nil
	}
	return 0, fmt.Errorf("%w: %s (use YYYY-MM-DD)", ErrInvalidDueDate, s)
}

// ParseAssignees parses a comma-separated list of numeric user ids.
func ParseAssignees(s string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(s) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAssignee, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseTags parses a comma-separated list of tag names.
func ParseTags(s string) []string {
	return splitList(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TaskCreate is the body of a task creation request.
type TaskCreate struct {
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	MarkdownDescription string    `json:"markdown_description,omitempty"`
	Assignees           []int64   `json:"assignees,omitempty"`
	Tags                []string  `json:"tags,omitempty"`
	Status              string    `json:"status,omitempty"`
	Priority            *Priority `json:"priority,omitempty"`
	DueDate             *DueDate  `json:"due_date,omitempty"`
}

// TaskUpdate is one property change. The set of implementations is closed.
type TaskUpdate interface {
	// Property returns the CLI property name.
	Property() string
	taskUpdate()
}

type (
	NameUpdate        struct{ Name string }
	DescriptionUpdate struct{ Description string }
	StatusUpdate      struct{ Status string }
	PriorityUpdate    struct{ Priority Priority }
	AssigneesUpdate   struct{ Assignees []int64 }
	DueDateUpdate     struct{ DueDate DueDate }
	TagsUpdate        struct{ Tags []string }
)

func (NameUpdate) Property() string        { return "name" }
func (DescriptionUpdate) Property() string { return "description" }
func (StatusUpdate) Property() string      { return "status" }
func (PriorityUpdate) Property() string    { return "priority" }
func (AssigneesUpdate) Property() string   { return "assignees" }
func (DueDateUpdate) Property() string     { return "due_date" }
func (TagsUpdate) Property() string        { return "tags" }

func (NameUpdate) taskUpdate()        {}
func (DescriptionUpdate) taskUpdate() {}
func (StatusUpdate) taskUpdate()      {}
func (PriorityUpdate) taskUpdate()    {}
func (AssigneesUpdate) taskUpdate()   {}
func (DueDateUpdate) taskUpdate()     {}
func (TagsUpdate) taskUpdate()        {}

// ParseTaskUpdate builds an update from a property name and its CLI text.
func ParseTaskUpdate(property, value string) (TaskUpdate, error) {
	switch strings.ToLower(strings.TrimSpace(property)) {
	case "name":
		return NameUpdate{Name: value}, nil
	case "description":
		return DescriptionUpdate{Description: value}, nil
	case "status":
		return StatusUpdate{Status: value}, nil
	case "priority":
		p, err := ParsePriority(value)
		if err != nil {
			return nil, err
		}
		return PriorityUpdate{Priority: p}, nil
	case "assignees":
		ids, err := ParseAssignees(value)
		if err != nil {
			return nil, err
		}
		return AssigneesUpdate{Assignees: ids}, nil
	case "due_date":
		d, err := ParseDueDate(value)
		if err != nil {
			return nil, err
		}
		return DueDateUpdate{DueDate: d}, nil
	case "tags":
		return TagsUpdate{Tags: ParseTags(value)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, property)
	}
}

// UpdatePayload maps an update to its wire body.
func UpdatePayload(u TaskUpdate) map[string]any {
	switch u := u.(type) {
	case NameUpdate:
		return map[string]any{"name": u.Name}
	case DescriptionUpdate:
		return map[string]any{"description": u.Description}
	case StatusUpdate:
		return map[string]any{"status": u.Status}
	case PriorityUpdate:
		return map[string]any{"priority": u.Priority}
	case AssigneesUpdate:
		ids := u.Assignees
		if ids == nil {
			ids = []int64{}
		}
		return map[string]any{"assignees": ids}
	case DueDateUpdate:
		return map[string]any{"due_date": u.DueDate}
	case TagsUpdate:
		tags := u.Tags
		if tags == nil {
			tags = []string{}
		}
		return map[string]any{"tags": tags}
	default:
		panic(fmt.Sprintf("service: unhandled task update %T", u))
	}
}
