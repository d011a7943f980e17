// Package browser drives a Chrome session through chromedp and implements the page
// capabilities the job iterator and wizard walker need.
package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Login form selectors
const (
	usernameSelector = `#username`
	passwordSelector = `#password`
	loginSelector    = `//button[@type='submit' and contains(@class, 'btn__primary--large')]`
)

// Options configures a browser session.
type Options struct {
	Headless    bool
	UserDataDir string
	BaseURL     string
	// Timeout bounds every single browser action
	Timeout time.Duration
	// Pause is the delay between scroll steps
	Pause time.Duration
	// LoginSettle is how long to wait after submitting the login form
	LoginSettle time.Duration
	Logger      *slog.Logger
}

// Session is a running browser with one tab.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	logger *slog.Logger
}

// Flags returns the Chrome command line flags for opts.
func Flags(opts Options) map[string]any {
	flags := map[string]any{
		"headless":                  opts.Headless,
		"start-maximized":           true,
		"ignore-certificate-errors": true,
		"no-sandbox":                true,
		"disable-extensions":        true,
		"disable-blink-features":    "AutomationControlled",
		"disable-dev-shm-usage":     true,
	}
	if opts.Headless {
		flags["disable-gpu"] = true
	}
	return flags
}

// Launch starts Chrome. The session lives until Close or until ctx ends.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Pause <= 0 {
		opts.Pause = 500 * time.Millisecond
	}
	if opts.LoginSettle <= 0 {
		opts.LoginSettle = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	allocOpts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range Flags(opts) {
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug("chromedp", "message", fmt.Sprintf(format, args...))
		}),
	)
	s := &Session{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		opts:   opts,
		logger: logger,
	}

	// the first Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		s.cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	logger.Info("browser started", "headless", opts.Headless)
	return s, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.cancel()
}

// run executes actions on the tab, bounded by the action timeout and by ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.opts.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// LoginURL returns the sign-in page of the site.
func LoginURL(base string) string {
	return strings.TrimRight(base, "/") + "/login/"
}

// Login signs in with the given credentials. A missing form is logged, not returned,
// so that an already signed-in profile keeps working.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.logger.Info("logging in, please wait")
	if err := s.Navigate(ctx, LoginURL(s.opts.BaseURL)); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}

	err := s.run(ctx,
		chromedp.WaitVisible(usernameSelector, chromedp.ByQuery),
		chromedp.SendKeys(usernameSelector, username+"\t", chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.SendKeys(passwordSelector, password, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(loginSelector, chromedp.BySearch, chromedp.NodeVisible),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("username/password field or login button not found", "error", err)
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.opts.LoginSettle):
	}
	return nil
}

// Navigate loads url and waits for the body.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("navigating", "url", url)
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Title returns the document title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// PageSource returns the rendered HTML.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// ScrollSteps returns the offsets visited when scrolling from 0 up to (excluding) limit.
func ScrollSteps(from, limit, step int) []int {
	var out []int
	for y := from; y < limit; y += step {
		out = append(out, y)
	}
	return out
}

// ScrollPage scrolls the window down in 500px steps and back to the top.
func (s *Session) ScrollPage(ctx context.Context) error {
	actions := make([]chromedp.Action, 0, 20)
	for _, y := range ScrollSteps(0, 4000, 500) {
		actions = append(actions,
			chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, %d);", y), nil),
			chromedp.Sleep(s.opts.Pause),
		)
	}
	actions = append(actions, chromedp.Evaluate("window.scrollTo(0, 0);", nil), chromedp.Sleep(s.opts.Pause))
	return s.run(ctx, actions...)
}

// ScrollResults scrolls the search results list so every card renders. A page without
// the list is not an error.
func (s *Session) ScrollResults(ctx context.Context) error {
	steps := ScrollSteps(300, 3000, 100)
	js := fmt.Sprintf(`(() => {
		const list = document.querySelector('.jobs-search-results-list') || document.querySelector('.scaffold-layout__list');
		if (!list) return false;
		for (const y of %s) list.scrollTo(0, y);
		return true;
	})()`, jsArray(steps))

	var found bool
	if err := s.run(ctx, chromedp.Evaluate(js, &found)); err != nil {
		return err
	}
	if !found {
		s.logger.Debug("results list not found")
	}
	return nil
}

func jsArray(ints []int) string {
	parts := make([]string, len(ints))
	for i, v := range ints {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
