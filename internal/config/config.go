package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBaseURL is the address of the locally served application.
	// The dev server of the frontend listens here unless told otherwise.
	DefaultBaseURL = "http://localhost:3000"

	// DefaultOutputDir is the base directory that receives one timestamped
	// subdirectory per audit run.
	DefaultOutputDir = "a11y-reports"

	// DefaultNavigationTimeout bounds a single page navigation, including the
	// wait for network quiescence. It is per navigation, not per run.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultAxeScriptURL is where axe-core is loaded from when no local copy
	// of the script is configured.
	DefaultAxeScriptURL = "https://cdnjs.cloudflare.com/ajax/libs/axe-core/4.10.2/axe.min.js"

	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"
)

// Config holds all configuration options for an audit run.
// It is populated from defaults, the optional YAML file and CLI flags, in
// that order, and then handed to the audit runner by value.
type Config struct {
	// BaseURL is prefixed to every page path before navigation.
	BaseURL string

	// OutputDir is the base report directory.
	OutputDir string

	// NavigationTimeout bounds each navigation and quiescence wait.
	NavigationTimeout time.Duration

	// Pages is the ordered page registry. Order is audit order.
	Pages []PageSpec

	// Headless runs the browser without a visible window.
	Headless bool

	// BrowserBin is an explicit Chromium binary. Empty means let go-rod
	// find or download one.
	BrowserBin string

	// AxeScriptPath is a local axe.min.js. It wins over AxeScriptURL.
	AxeScriptPath string

	// AxeScriptURL is the remote axe-core script injected into each page.
	AxeScriptURL string

	// Cookie is sent with every navigation, e.g. to audit pages behind login.
	// Format: "name=value" or "name1=value1; name2=value2".
	Cookie string

	// Headers are extra HTTP headers sent with every navigation.
	Headers map[string]string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// SaveHistory records finished runs in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string
}

// NewConfig creates a Config with default values and the default page registry.
func NewConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		OutputDir:         DefaultOutputDir,
		NavigationTimeout: DefaultNavigationTimeout,
		Pages:             DefaultPages(),
		Headless:          true,
		AxeScriptURL:      DefaultAxeScriptURL,
		SaveHistory:       true,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for a11yscan.
// On Linux: ~/.local/share/a11yscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yscan.
// On Linux: ~/.config/a11yscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if _, err := NewRegistry(c.Pages); err != nil {
		return err
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.NavigationTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if c.AxeScriptPath == "" && c.AxeScriptURL == "" {
		return ErrNoAxeScript
	}

	return nil
}

// ApplyFile overlays the non-zero values of a configuration file.
// A file that lists pages replaces the default registry entirely.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.Timeout > 0 {
		c.NavigationTimeout = f.Timeout
	}
	if len(f.Pages) > 0 {
		c.Pages = append([]PageSpec(nil), f.Pages...)
	}
	if f.Headless != nil {
		c.Headless = *f.Headless
	}
	if f.BrowserBin != "" {
		c.BrowserBin = f.BrowserBin
	}
	if f.AxeScript != "" {
		c.AxeScriptPath = f.AxeScript
	}
	if f.Cookie != "" {
		c.Cookie = f.Cookie
	}
	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			c.Headers[k] = v
		}
	}
}
