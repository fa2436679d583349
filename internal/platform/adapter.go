// Package platform holds the adapter framework that lets the orchestrator
// drive structurally different application forms through one contract:
// detect a platform from the apply URL, open a session, fill known fields,
// submit per policy.
package platform

import (
	"context"
	"errors"
)

// Outcome is the adapter-reported result of a submit attempt.
type Outcome string

const (
	// OutcomeSubmitted means the application was submitted by the adapter.
	OutcomeSubmitted Outcome = "submitted"
	// OutcomeAwaitingConfirmation means the form is filled and a human
	// must confirm the final submit.
	OutcomeAwaitingConfirmation Outcome = "awaiting_confirmation"
	// OutcomeManualRequired means the adapter only opened the page and the
	// whole application must be completed by hand.
	OutcomeManualRequired Outcome = "manual_required"
)

// SubmitPolicy decides whether an adapter presses the final submit button
// itself or leaves it to the human.
type SubmitPolicy string

const (
	SubmitAuto         SubmitPolicy = "auto"
	SubmitHumanConfirm SubmitPolicy = "human-confirm"
)

// ParseSubmitPolicy maps a config string onto a policy, defaulting to
// human confirmation.
func ParseSubmitPolicy(raw string) SubmitPolicy {
	if raw == string(SubmitAuto) {
		return SubmitAuto
	}
	return SubmitHumanConfirm
}

// ErrUnknownField is returned by Fill when the adapter has no selector for
// the given field key. The orchestrator skips such fields.
var ErrUnknownField = errors.New("field key not supported by adapter")

// Adapter is the uniform automation contract one platform implements.
type Adapter interface {
	// Name identifies the adapter in logs and history reasons.
	Name() string
	// Detect reports whether this adapter can drive the given apply URL.
	Detect(rawURL string) bool
	// Policy is the adapter's configured submit policy.
	Policy() SubmitPolicy
	// Open navigates to the application and returns an exclusive session.
	// The caller must Close the session on every exit path.
	Open(ctx context.Context, rawURL string) (*Session, error)
	// Fill populates one known form field in the session.
	Fill(ctx context.Context, s *Session, fieldKey, value string) error
	// Submit finalizes the attempt per the adapter's policy.
	Submit(ctx context.Context, s *Session) (Outcome, error)
}
