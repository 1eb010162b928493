// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// Failure indicates any failure: bad usage, a missing credential, an API
	// or network error, or a bulk operation where at least one item failed.
	Failure = 1
)
