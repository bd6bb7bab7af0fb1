package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".a11yscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .a11yscan configuration file.
// Every field is optional; zero values leave the defaults in place.
type File struct {
	// BaseURL overrides the application address.
	BaseURL string `yaml:"baseURL,omitempty"`

	// OutputDir overrides the base report directory.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Timeout overrides the per-navigation timeout, e.g. "45s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Pages replaces the default page registry when non-empty.
	Pages []PageSpec `yaml:"pages,omitempty"`

	// Headless toggles headless mode. A pointer distinguishes "unset".
	Headless *bool `yaml:"headless,omitempty"`

	// BrowserBin is an explicit Chromium binary path.
	BrowserBin string `yaml:"browserBin,omitempty"`

	// AxeScript is a local path to axe.min.js.
	AxeScript string `yaml:"axeScript,omitempty"`

	// Cookie is sent with every navigation.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are sent with every navigation.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, if specified
//  2. .a11yscan in the current directory
//  3. config.yaml in the XDG config directory
//  4. .a11yscan in the user's home directory
//
// Returns the path found, or an empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
