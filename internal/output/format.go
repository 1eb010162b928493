// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"clickup/internal/service"
)

const (
	// DateLayout is used for due dates in task lines.
	DateLayout = "2006-01-02"

	// DateTimeLayout is used for timestamps in task details.
	DateTimeLayout = "2006-01-02 15:04:05 UTC"
)

// JSON writes v as indented JSON followed by a newline.
// Entities that carry their raw document are written verbatim.
func JSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// FormatTasks formats a task listing. The list name is shown when withList
// is set (team-wide listings).
func FormatTasks(w io.Writer, tasks []service.Task, withList bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}
	fmt.Fprintf(w, "Found %d task(s):\n", len(tasks))
	for _, t := range tasks {
		FormatTaskLine(w, t, withList)
	}
}

// FormatTaskLine formats one task of a listing.
// Format: "  {ID} - {NAME} [{STATUS}]" followed by indented detail lines and a blank line.
func FormatTaskLine(w io.Writer, task service.Task, withList bool) {
	fmt.Fprintf(w, "  %s - %s [%s]\n", task.ID, normalizeTitle(task.Name), task.Status.Status)
	if task.CustomID != "" {
		fmt.Fprintf(w, "    Custom ID: %s\n", task.CustomID)
	}
	if withList && task.List != nil && task.List.Name != "" {
		fmt.Fprintf(w, "    List: %s\n", task.List.Name)
	}
	if len(task.Assignees) > 0 {
		fmt.Fprintf(w, "    Assignees: %s\n", assigneeNames(task.Assignees))
	}
	if due, ok := task.DueDate.Millis(); ok {
		fmt.Fprintf(w, "    Due: %s\n", formatMillis(due, DateLayout))
	}
	fmt.Fprintf(w, "    URL: %s\n", task.URL)
	fmt.Fprintln(w)
}

// FormatTaskDetail formats the full view of a single task.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintln(w, "Task Details:")
	fmt.Fprintf(w, "  ID: %s\n", task.ID)
	if task.CustomID != "" {
		fmt.Fprintf(w, "  Custom ID: %s\n", task.CustomID)
	}
	fmt.Fprintf(w, "  Name: %s\n", normalizeTitle(task.Name))
	fmt.Fprintf(w, "  Status: %s\n", task.Status.Status)
	priority := "None"
	if task.Priority != nil && task.Priority.Priority != "" {
		priority = task.Priority.Priority
	}
	fmt.Fprintf(w, "  Priority: %s\n", priority)
	if ms, ok := task.DateCreated.Millis(); ok {
		fmt.Fprintf(w, "  Created: %s\n", formatMillis(ms, DateTimeLayout))
	}
	if ms, ok := task.DateUpdated.Millis(); ok {
		fmt.Fprintf(w, "  Updated: %s\n", formatMillis(ms, DateTimeLayout))
	}
	if task.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", task.Description)
	}
	if len(task.Assignees) > 0 {
		fmt.Fprintf(w, "  Assignees: %s\n", assigneeNames(task.Assignees))
	}
	if ms, ok := task.DueDate.Millis(); ok {
		fmt.Fprintf(w, "  Due Date: %s\n", formatMillis(ms, DateTimeLayout))
	}
	if len(task.Tags) > 0 {
		names := make([]string, len(task.Tags))
		for i, tag := range task.Tags {
			names[i] = tag.Name
		}
		fmt.Fprintf(w, "  Tags: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "  URL: %s\n", task.URL)
}

// FormatTaskCreated formats the result of task creation.
func FormatTaskCreated(w io.Writer, task service.Task) {
	fmt.Fprintln(w, "Task created successfully!")
	fmt.Fprintf(w, "Task ID: %s\n", task.ID)
	if task.CustomID != "" {
		fmt.Fprintf(w, "Custom ID: %s\n", task.CustomID)
	}
	fmt.Fprintf(w, "Task Name: %s\n", task.Name)
	fmt.Fprintf(w, "URL: %s\n", task.URL)
}

// FormatTaskUpdated formats the result of a property update.
func FormatTaskUpdated(w io.Writer, taskID, property string, task service.Task) {
	fmt.Fprintln(w, "Task property updated successfully!")
	fmt.Fprintf(w, "Task ID: %s\n", taskID)
	fmt.Fprintf(w, "Property: %s\n", property)
	fmt.Fprintf(w, "URL: %s\n", task.URL)
}

// FormatCreated formats the result of creating a space, folder or list.
// kind is the capitalized entity noun ("Space").
func FormatCreated(w io.Writer, kind, id, name string) {
	fmt.Fprintf(w, "%s created successfully!\n", kind)
	fmt.Fprintf(w, "%s ID: %s\n", kind, id)
	fmt.Fprintf(w, "%s Name: %s\n", kind, name)
}

// Entry is one row of a space, folder, list or team listing.
type Entry struct {
	ID   string
	Name string
}

// FormatEntries formats a listing of named entities. noun is plural
// and lowercase ("spaces").
func FormatEntries(w io.Writer, noun string, entries []Entry) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No %s found\n", noun)
		return
	}
	fmt.Fprintf(w, "Found %d %s:\n", len(entries), noun)
	for _, e := range entries {
		fmt.Fprintf(w, "  %s - %s\n", e.ID, normalizeTitle(e.Name))
	}
}

// FormatDeleted formats one successful deletion.
func FormatDeleted(w io.Writer, taskID string) {
	fmt.Fprintf(w, "Deleted task: %s\n", taskID)
}

// FormatBulkResult formats the summary of a bulk delete.
func FormatBulkResult(w io.Writer, succeeded, failed int) {
	fmt.Fprintf(w, "\nResults: %d deleted, %d failed\n", succeeded, failed)
}

func assigneeNames(users []service.User) string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.DisplayName()
	}
	return strings.Join(names, ", ")
}

func formatMillis(ms int64, layout string) string {
	return time.UnixMilli(ms).UTC().Format(layout)
}

// normalizeTitle normalizes a name for display.
// - Empty or whitespace-only names become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
