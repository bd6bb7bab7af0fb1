package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/nao1215/a11yscan/internal/audit"
	"github.com/nao1215/a11yscan/internal/axe"
)

// Options configures the browser session.
type Options struct {
	// Bin is the Chromium binary. Empty lets go-rod look one up or
	// download it.
	Bin string

	// Headless runs without a window.
	Headless bool

	// ControlURL attaches to an already running browser instead of
	// launching one, e.g. ws://127.0.0.1:9222/devtools/browser/...
	ControlURL string

	// Script is the axe-core distribution injected into every page.
	Script axe.Script

	// Cookie is set on every page before navigation ("a=1; b=2").
	Cookie string

	// Headers are sent with every request of every page.
	Headers map[string]string

	// Logger receives debug output. Defaults to slog.Default.
	Logger *slog.Logger
}

// Session is a Chromium instance driven over the DevTools protocol.
// It implements audit.Session.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	script   axe.Script
	cookies  []*http.Cookie
	headers  []string
	logger   *slog.Logger
}

// Launch starts (or attaches to) Chromium and connects to it.
// Every failure is returned as *audit.SessionLaunchError.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cookies, err := parseCookies(opts.Cookie)
	if err != nil {
		return nil, &audit.SessionLaunchError{Err: err}
	}

	s := &Session{
		script:  opts.Script,
		cookies: cookies,
		headers: headerPairs(opts.Headers),
		logger:  logger,
	}

	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Context(ctx).Headless(opts.Headless)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, &audit.SessionLaunchError{Err: fmt.Errorf("launch chromium: %w", err)}
		}
		s.launcher = l
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if s.launcher != nil {
			s.launcher.Kill()
		}
		return nil, &audit.SessionLaunchError{Err: fmt.Errorf("connect to chromium: %w", err)}
	}
	s.browser = b

	logger.Debug("browser session started", "control_url", controlURL, "headless", opts.Headless)
	return s, nil
}

// NewPage opens a blank page in a fresh incognito context.
func (s *Session) NewPage(ctx context.Context) (audit.Page, error) {
	incognito, err := s.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	p := &Page{
		page:      page.Context(ctx),
		incognito: incognito,
		script:    s.script,
		cookies:   s.cookies,
	}

	if len(s.headers) > 0 {
		cleanup, err := p.page.SetExtraHeaders(s.headers)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("set extra headers: %w", err)
		}
		p.cleanup = cleanup
	}
	return p, nil
}

// Close closes the browser and, if it was launched here, waits for the
// process to exit and removes its profile directory.
func (s *Session) Close() error {
	err := s.browser.Close()
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	s.logger.Debug("browser session closed")
	return err
}

// Page is one tab in its own incognito context. It implements audit.Page.
type Page struct {
	page      *rod.Page
	incognito *rod.Browser
	script    axe.Script
	cookies   []*http.Cookie
	cleanup   func()
}

// Navigate loads url and waits for the network-idle lifecycle event.
// If it does not arrive within timeout the navigation fails.
func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	page := p.page.Context(tctx)

	if len(p.cookies) > 0 {
		if err := page.SetCookies(cookieParams(p.cookies, url)); err != nil {
			return fmt.Errorf("set cookies: %w", err)
		}
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()

	if err := tctx.Err(); err != nil {
		return fmt.Errorf("network did not become idle within %s: %w", timeout, err)
	}
	return nil
}

// Analyze runs axe-core against the loaded document.
func (p *Page) Analyze(ctx context.Context) ([]byte, error) {
	return p.script.Run(p.page.Context(ctx))
}

// Close closes the tab and disposes of its incognito context.
func (p *Page) Close() error {
	if p.cleanup != nil {
		p.cleanup()
	}
	return errors.Join(p.page.Close(), p.incognito.Close())
}

// parseCookies parses a Cookie header value.
func parseCookies(raw string) ([]*http.Cookie, error) {
	if raw == "" {
		return nil, nil
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return nil, fmt.Errorf("parse cookie: %w", err)
	}
	return cookies, nil
}

// cookieParams scopes cookies to the URL about to be loaded.
func cookieParams(cookies []*http.Cookie, url string) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:  c.Name,
			Value: c.Value,
			URL:   url,
		})
	}
	return params
}

// headerPairs flattens headers into the key/value list go-rod expects,
// sorted by key.
func headerPairs(headers map[string]string) []string {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(headers)*2)
	for _, k := range keys {
		pairs = append(pairs, k, headers[k])
	}
	return pairs
}

// Launcher returns an audit.LaunchFunc for opts.
func Launcher(opts Options) audit.LaunchFunc {
	return func(ctx context.Context) (audit.Session, error) {
		s, err := Launch(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
