package job

import "fmt"

// NotFoundError is returned when an operation references an unknown job id.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job %q not found", e.JobID)
}

// InvalidTransitionError is returned when a requested state edge is not in
// the allowed transition table. The record is left unchanged.
type InvalidTransitionError struct {
	JobID string
	From  State
	To    State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("job %q: transition %s -> %s is not allowed", e.JobID, e.From, e.To)
}
