package platform

import (
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Runtime owns the Playwright driver and the single browser process shared
// by all adapters. Sessions get their own browser context each.
type Runtime struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewRuntime starts the Playwright driver and launches a Chromium browser.
func NewRuntime(headless bool) (*Runtime, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args:     []string{"--disable-dev-shm-usage", "--no-sandbox"},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	return &Runtime{pw: pw, browser: browser}, nil
}

// NewContext creates an isolated browser context with a fresh page.
func (r *Runtime) NewContext() (playwright.BrowserContext, playwright.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil, nil, fmt.Errorf("browser runtime is closed")
	}

	browserCtx, err := r.browser.NewContext()
	if err != nil {
		return nil, nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		return nil, nil, fmt.Errorf("creating page: %w", err)
	}

	return browserCtx, page, nil
}

// Close shuts the browser down and stops the driver.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.pw != nil {
		if serr := r.pw.Stop(); err == nil {
			err = serr
		}
		r.pw = nil
	}
	return err
}
