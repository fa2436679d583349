package platform

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// GenericAdapter is the documented fallback for unregistered platforms.
// It opens the raw URL for the human and performs no field filling; its
// outcome is always "manual completion required", never a claimed success.
type GenericAdapter struct {
	rt *Runtime
}

// NewGeneric creates the fallback adapter. A nil runtime yields detached
// sessions, which keeps the fallback usable without a browser.
func NewGeneric(rt *Runtime) *GenericAdapter {
	return &GenericAdapter{rt: rt}
}

func (a *GenericAdapter) Name() string { return "generic" }

// Detect always matches; the registry consults the fallback last.
func (a *GenericAdapter) Detect(string) bool { return true }

func (a *GenericAdapter) Policy() SubmitPolicy { return SubmitHumanConfirm }

func (a *GenericAdapter) Open(ctx context.Context, rawURL string) (*Session, error) {
	if a.rt == nil {
		return NewDetachedSession(rawURL), nil
	}

	browserCtx, page, err := a.rt.NewContext()
	if err != nil {
		return nil, err
	}

	session := newSession(rawURL, browserCtx, page)

	if _, err := page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(timeoutMillis(ctx, defaultNavigationTimeout)),
	}); err != nil {
		session.Close()
		return nil, fmt.Errorf("navigating to %s: %w", rawURL, err)
	}

	return session, nil
}

// Fill is a no-op: the generic adapter knows nothing about the form.
func (a *GenericAdapter) Fill(context.Context, *Session, string, string) error {
	return ErrUnknownField
}

func (a *GenericAdapter) Submit(context.Context, *Session) (Outcome, error) {
	return OutcomeManualRequired, nil
}
