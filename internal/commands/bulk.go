package commands

import (
	"context"
	"strings"

	"clickup/internal/service"
)

// BulkResult is the outcome of a multi-item operation.
type BulkResult struct {
	Succeeded []string
	Failed    []BulkFailure
}

// BulkFailure records one item that failed.
type BulkFailure struct {
	ID  string
	Err error
}

// DeleteTasks deletes ids one at a time, in order. A failure is recorded and
// the remaining ids are still attempted. report, when non-nil, is called
// after each item.
func DeleteTasks(ctx context.Context, svc service.Service, ids []string, report func(id string, err error)) BulkResult {
	var result BulkResult
	for _, id := range ids {
		err := svc.DeleteTask(ctx, id)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Err: err})
		} else {
			result.Succeeded = append(result.Succeeded, id)
		}
		if report != nil {
			report(id, err)
		}
	}
	return result
}

// splitIDs splits a comma-separated argument, dropping blanks.
func splitIDs(arg string) []string {
	var ids []string
	for _, id := range strings.Split(arg, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
