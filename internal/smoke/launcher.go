package smoke

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// Checklist is the manual test list printed after the browser opens.
var Checklist = []string{
	"Tab through every page: focus order follows the visual order",
	"A visible focus indicator is shown on every focused control",
	"Modals and dialogs trap focus and close with Escape",
	"Focus returns to the opening control after a dialog closes",
	"Every form input has a visible label and announces errors",
	"Pages stay usable at 200% zoom without horizontal scrolling",
	"Text and icons keep enough contrast in light and dark themes",
	"A screen reader announces page titles, headings and dialog names",
}

// RunFunc starts an external command without waiting for it to exit.
type RunFunc func(ctx context.Context, name string, args ...string) error

// startCommand is the default RunFunc.
func startCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // argv comes from the static browser table
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait() //nolint:errcheck // the browser outlives this process
	}()
	return nil
}

// Launcher opens the application in a local browser.
type Launcher struct {
	run    RunFunc
	goos   string
	logger *slog.Logger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithRunFunc replaces how commands are started.
func WithRunFunc(fn RunFunc) Option {
	return func(l *Launcher) {
		l.run = fn
	}
}

// WithGOOS overrides the target operating system.
func WithGOOS(goos string) Option {
	return func(l *Launcher) {
		l.goos = goos
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// NewLauncher creates a Launcher for the running OS.
func NewLauncher(opts ...Option) *Launcher {
	l := &Launcher{
		run:    startCommand,
		goos:   runtime.GOOS,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GOOS returns the operating system commands are built for.
func (l *Launcher) GOOS() string {
	return l.goos
}

// Open launches b with url.
func (l *Launcher) Open(ctx context.Context, b Browser, url string) error {
	argv, err := b.Command(l.goos, url)
	if err != nil {
		return err
	}
	l.logger.Debug("launching browser", "browser", b.ID, "argv", argv)
	if err := l.run(ctx, argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("open %s: %w", b.Name, err)
	}
	return nil
}

// PrintChecklist writes the numbered manual checklist for b and url.
func PrintChecklist(w io.Writer, b Browser, url string) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	box := r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dim := r.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(w, title.Render(fmt.Sprintf("Smoke test: %s", b.Name)))
	fmt.Fprintln(w, dim.Render(url))

	lines := ""
	for i, item := range Checklist {
		if i > 0 {
			lines += "\n"
		}
		lines += fmt.Sprintf("%d. [ ] %s", i+1, item)
	}
	fmt.Fprintln(w, box.Render(lines))
}
