package platform

import (
	"sync"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// Session is one open, exclusive browser context for a single job attempt.
// Close is idempotent and releases the underlying browser resources, so a
// leaked handle can never block subsequent jobs.
type Session struct {
	ID     string
	JobURL string

	page    playwright.Page
	browser playwright.BrowserContext

	mu     sync.Mutex
	closed bool
}

func newSession(jobURL string, browser playwright.BrowserContext, page playwright.Page) *Session {
	return &Session{
		ID:      uuid.NewString(),
		JobURL:  jobURL,
		page:    page,
		browser: browser,
	}
}

// NewDetachedSession builds a session without browser resources. Used by
// adapters running without a browser runtime and by tests.
func NewDetachedSession(jobURL string) *Session {
	return &Session{
		ID:     uuid.NewString(),
		JobURL: jobURL,
	}
}

// Page returns the session's page handle, nil for detached sessions.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Close releases the session's browser context. Safe to call repeatedly.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.page != nil {
		err = s.page.Close()
	}
	if s.browser != nil {
		if cerr := s.browser.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Closed reports whether the session has been released.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
