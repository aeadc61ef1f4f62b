package errors

import (
	"errors"
	"fmt"
)

// FatalRepositoryError signals that a repository location or revision could
// not be resolved, or that a working copy could not be acquired. It aborts
// the whole job.
type FatalRepositoryError struct {
	Op       string
	Location string
	Err      error
}

func (e *FatalRepositoryError) Error() string {
	return fmt.Sprintf("repository error during %s of %q: %v", e.Op, e.Location, e.Err)
}

func (e *FatalRepositoryError) Unwrap() error {
	return e.Err
}

func NewFatalRepositoryError(op, location string, err error) error {
	return &FatalRepositoryError{Op: op, Location: location, Err: err}
}

// IsFatalRepository reports whether err is (or wraps) a FatalRepositoryError.
func IsFatalRepository(err error) bool {
	var fre *FatalRepositoryError
	return errors.As(err, &fre)
}

// RecoverableToolError signals that a single analyzer invocation or a single
// LLM call failed or produced unusable output. It is absorbed at the call
// site: the offending tool/file contributes zero findings and the run
// continues.
type RecoverableToolError struct {
	Tool string
	Err  error
}

func (e *RecoverableToolError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *RecoverableToolError) Unwrap() error {
	return e.Err
}

func NewRecoverableToolError(tool string, err error) error {
	return &RecoverableToolError{Tool: tool, Err: err}
}

// JobInfrastructureError signals a job state persistence problem. Saving
// snapshots is best-effort; callers log these and keep going.
type JobInfrastructureError struct {
	JobID string
	Err   error
}

func (e *JobInfrastructureError) Error() string {
	return fmt.Sprintf("job %q state persistence failed: %v", e.JobID, e.Err)
}

func (e *JobInfrastructureError) Unwrap() error {
	return e.Err
}

func NewJobInfrastructureError(jobID string, err error) error {
	return &JobInfrastructureError{JobID: jobID, Err: err}
}
