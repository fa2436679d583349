package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	defaultNavigationTimeout = 30 * time.Second
	defaultActionTimeout     = 10 * time.Second
)

// browserAdapter is the shared Playwright-backed implementation behind the
// platform-specific adapters. Each platform contributes its host list, a
// field-key to selector table, and the submit button selector.
type browserAdapter struct {
	name           string
	rt             *Runtime
	policy         SubmitPolicy
	hosts          []string
	fields         map[string]string
	fileFields     map[string]string
	submitSelector string
}

func (a *browserAdapter) Name() string { return a.name }

func (a *browserAdapter) Policy() SubmitPolicy { return a.policy }

// Detect matches the apply URL's host against the platform's domains.
func (a *browserAdapter) Detect(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range a.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func (a *browserAdapter) Open(ctx context.Context, rawURL string) (*Session, error) {
	if a.rt == nil {
		return nil, fmt.Errorf("%s adapter has no browser runtime", a.name)
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

func (a *browserAdapter) Fill(ctx context.Context, s *Session, fieldKey, value string) error {
	if sel, ok := a.fileFields[fieldKey]; ok {
		if err := s.Page().Locator(sel).SetInputFiles(value); err != nil {
			return fmt.Errorf("uploading %s: %w", fieldKey, err)
		}
		return nil
	}

	sel, ok := a.fields[fieldKey]
	if !ok {
		return ErrUnknownField
	}

	if err := s.Page().Locator(sel).Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(timeoutMillis(ctx, defaultActionTimeout)),
	}); err != nil {
		return fmt.Errorf("filling %s: %w", fieldKey, err)
	}
	return nil
}

func (a *browserAdapter) Submit(ctx context.Context, s *Session) (Outcome, error) {
	if a.policy == SubmitHumanConfirm {
		// The form stays open in the browser for the final human review.
		return OutcomeAwaitingConfirmation, nil
	}

	if err := s.Page().Locator(a.submitSelector).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(timeoutMillis(ctx, defaultActionTimeout)),
	}); err != nil {
		return "", fmt.Errorf("clicking submit: %w", err)
	}
	return OutcomeSubmitted, nil
}

// timeoutMillis caps an action timeout at the context's remaining budget.
func timeoutMillis(ctx context.Context, fallback time.Duration) float64 {
	d := fallback
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < d {
			d = remaining
		}
	}
	if d < 0 {
		d = 0
	}
	return float64(d.Milliseconds())
}
