package pipeline

import (
	"fmt"
	"strings"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// MissingRequiredTableError halts a run that lacks one of the participant,
// plan or claim-line tables.
type MissingRequiredTableError struct {
	Missing []string
}

func (e *MissingRequiredTableError) Error() string {
	return fmt.Sprintf("upload a complete dataset: missing required tables %s", strings.Join(e.Missing, ", "))
}

// EmptyResultWarning is recorded on the report when the selection removed
// every merged row. It is never returned as an error.
type EmptyResultWarning struct {
	Merged int
}

func (w *EmptyResultWarning) Error() string {
	return fmt.Sprintf("no rows match the current filters (%d merged rows before filtering)", w.Merged)
}
