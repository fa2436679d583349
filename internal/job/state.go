package job

import "fmt"

// State is the lifecycle state of an application record.
type State string

const (
	StateFound    State = "found"
	StateApplying State = "applying"
	StateApplied  State = "applied"
	StateRejected State = "rejected"
	StateFailed   State = "failed"
)

// edges is the complete set of allowed lifecycle transitions. Rejected and
// failed are terminal for the normal flow but re-entrant: a rejected job can
// be reopened and a failed job can be retried.
var edges = map[State][]State{
	StateFound:    {StateApplying, StateRejected},
	StateApplying: {StateApplied, StateFailed},
	StateRejected: {StateFound},
	StateFailed:   {StateApplying},
}

// Valid reports whether s is a known lifecycle state.
func (s State) Valid() bool {
	switch s {
	case StateFound, StateApplying, StateApplied, StateRejected, StateFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether the edge s -> target is allowed.
func (s State) CanTransitionTo(target State) bool {
	for _, next := range edges[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ParseState converts a string into a State, failing on unknown values.
func ParseState(raw string) (State, error) {
	s := State(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown state: %q", raw)
	}
	return s, nil
}
