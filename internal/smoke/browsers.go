package smoke

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownBrowser is returned for a browser ID that is not in the table.
var ErrUnknownBrowser = errors.New("unknown browser")

// ErrUnsupportedPlatform is returned when a browser has no launch command
// for the current operating system, e.g. Safari on Linux.
var ErrUnsupportedPlatform = errors.New("browser is not available on this platform")

// urlPlaceholder is replaced by the application URL in launch commands.
const urlPlaceholder = "{url}"

// Browser is one entry of the launch table.
type Browser struct {
	// ID is the value accepted by --browser.
	ID string

	// Name is shown in the selection menu.
	Name string

	// commands maps GOOS to the argv that opens a URL.
	commands map[string][]string
}

// browsers is the static launch table, in menu order.
var browsers = []Browser{
	{
		ID:   "chrome",
		Name: "Google Chrome",
		commands: map[string][]string{
			"darwin":  {"open", "-a", "Google Chrome", urlPlaceholder},
			"linux":   {"google-chrome", urlPlaceholder},
			"windows": {"cmd", "/c", "start", "chrome", urlPlaceholder},
		},
	},
	{
		ID:   "firefox",
		Name: "Mozilla Firefox",
		commands: map[string][]string{
			"darwin":  {"open", "-a", "Firefox", urlPlaceholder},
			"linux":   {"firefox", urlPlaceholder},
			"windows": {"cmd", "/c", "start", "firefox", urlPlaceholder},
		},
	},
	{
		ID:   "safari",
		Name: "Safari",
		commands: map[string][]string{
			"darwin": {"open", "-a", "Safari", urlPlaceholder},
		},
	},
	{
		ID:   "edge",
		Name: "Microsoft Edge",
		commands: map[string][]string{
			"darwin":  {"open", "-a", "Microsoft Edge", urlPlaceholder},
			"linux":   {"microsoft-edge", urlPlaceholder},
			"windows": {"cmd", "/c", "start", "msedge", urlPlaceholder},
		},
	},
}

// Browsers returns every browser in the table.
func Browsers() []Browser {
	return append([]Browser(nil), browsers...)
}

// Available returns the browsers that can be launched on goos.
func Available(goos string) []Browser {
	var out []Browser
	for _, b := range browsers {
		if _, ok := b.commands[goos]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Lookup finds a browser by ID, case-insensitively.
func Lookup(id string) (Browser, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, b := range browsers {
		if b.ID == id {
			return b, nil
		}
	}
	ids := make([]string, len(browsers))
	for i, b := range browsers {
		ids[i] = b.ID
	}
	sort.Strings(ids)
	return Browser{}, fmt.Errorf("%w %q (choose one of %s)", ErrUnknownBrowser, id, strings.Join(ids, ", "))
}

// Command returns the argv that opens url in b on goos.
func (b Browser) Command(goos, url string) ([]string, error) {
	tmpl, ok := b.commands[goos]
	if !ok {
		return nil, fmt.Errorf("%s on %s: %w", b.Name, goos, ErrUnsupportedPlatform)
	}
	argv := make([]string, len(tmpl))
	for i, arg := range tmpl {
		argv[i] = strings.ReplaceAll(arg, urlPlaceholder, url)
	}
	return argv, nil
}
