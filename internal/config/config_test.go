package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies the defaults of NewConfig.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default BaseURL is localhost:3000", func(t *testing.T) {
		t.Parallel()
		if cfg.BaseURL != "http://localhost:3000" {
			t.Errorf("expected BaseURL 'http://localhost:3000', got %q", cfg.BaseURL)
		}
	})

	t.Run("default NavigationTimeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.NavigationTimeout != 30*time.Second {
			t.Errorf("expected 30s, got %v", cfg.NavigationTimeout)
		}
	})

	t.Run("default pages are the built-in registry", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Pages) != len(DefaultPages()) {
			t.Errorf("expected %d pages, got %d", len(DefaultPages()), len(cfg.Pages))
		}
		if cfg.Pages[0].Name != "Home" || cfg.Pages[0].Path != "/" {
			t.Errorf("expected Home at /, got %+v", cfg.Pages[0])
		}
	})

	t.Run("default is headless", func(t *testing.T) {
		t.Parallel()
		if !cfg.Headless {
			t.Error("expected Headless to be true")
		}
	})

	t.Run("defaults validate", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests each validation rule on its own.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		return &Config{
			BaseURL:           "http://localhost:3000",
			OutputDir:         "reports",
			NavigationTimeout: time.Second,
			Pages:             []PageSpec{{Name: "Home", Path: "/"}},
			AxeScriptURL:      DefaultAxeScriptURL,
		}
	}

	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{name: "valid config", modify: func(*Config) {}, want: nil},
		{name: "no pages", modify: func(c *Config) { c.Pages = nil }, want: ErrNoPages},
		{name: "blank page name", modify: func(c *Config) { c.Pages[0].Name = "  " }, want: ErrEmptyPageName},
		{name: "relative path", modify: func(c *Config) { c.Pages[0].Path = "login" }, want: ErrInvalidPagePath},
		{
			name: "duplicate page names",
			modify: func(c *Config) {
				c.Pages = append(c.Pages, PageSpec{Name: "Home", Path: "/home"})
			},
			want: ErrDuplicatePage,
		},
		{name: "base URL without scheme", modify: func(c *Config) { c.BaseURL = "localhost:3000" }, want: ErrInvalidBaseURL},
		{name: "zero timeout", modify: func(c *Config) { c.NavigationTimeout = 0 }, want: ErrInvalidTimeout},
		{name: "negative timeout", modify: func(c *Config) { c.NavigationTimeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "empty output dir", modify: func(c *Config) { c.OutputDir = "" }, want: ErrEmptyOutputDir},
		{
			name:   "no axe script",
			modify: func(c *Config) { c.AxeScriptURL = "" },
			want:   ErrNoAxeScript,
		},
		{
			name: "local axe script is enough",
			modify: func(c *Config) {
				c.AxeScriptURL = ""
				c.AxeScriptPath = "axe.min.js"
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestRegistry tests the immutability of the page registry.
func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("copies input", func(t *testing.T) {
		t.Parallel()

		pages := []PageSpec{{Name: "Home", Path: "/"}, {Name: "Login", Path: "/login"}}
		r, err := NewRegistry(pages)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		pages[0].Name = "Changed"
		if got := r.Pages()[0].Name; got != "Home" {
			t.Errorf("registry observed caller mutation: got %q", got)
		}
	})

	t.Run("pages returns a copy", func(t *testing.T) {
		t.Parallel()

		r := MustRegistry(DefaultPages())
		got := r.Pages()
		got[0].Path = "/mutated"

		if r.Pages()[0].Path != "/" {
			t.Error("expected registry to be unaffected by mutation of returned slice")
		}
	})

	t.Run("preserves order", func(t *testing.T) {
		t.Parallel()

		r := MustRegistry(DefaultPages())
		want := []string{"Home", "Login", "Dashboard", "Settings", "Profile"}
		if r.Len() != len(want) {
			t.Fatalf("expected %d pages, got %d", len(want), r.Len())
		}
		for i, p := range r.Pages() {
			if p.Name != want[i] {
				t.Errorf("page %d: got %q, want %q", i, p.Name, want[i])
			}
		}
	})

	t.Run("MustRegistry panics on invalid input", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		MustRegistry(nil)
	})
}

// TestNewRegistryValidation tests rejection of labels whose report file
// would collide or leave the run directory.
func TestNewRegistryValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pages []PageSpec
		want  error
	}{
		{name: "empty", pages: nil, want: ErrNoPages},
		{name: "blank name", pages: []PageSpec{{Name: "  ", Path: "/"}}, want: ErrEmptyPageName},
		{name: "relative path", pages: []PageSpec{{Name: "Home", Path: "home"}}, want: ErrInvalidPagePath},
		{name: "exact duplicate", pages: []PageSpec{{Name: "Home", Path: "/"}, {Name: "Home", Path: "/home"}}, want: ErrDuplicatePage},
		{name: "case duplicate", pages: []PageSpec{{Name: "Home", Path: "/"}, {Name: "home", Path: "/home"}}, want: ErrDuplicatePage},
		{name: "whitespace duplicate", pages: []PageSpec{{Name: "User Settings", Path: "/a"}, {Name: "user\tsettings ", Path: "/b"}}, want: ErrDuplicatePage},
		{name: "summary", pages: []PageSpec{{Name: "Summary", Path: "/summary"}}, want: ErrReservedPageName},
		{name: "lower summary", pages: []PageSpec{{Name: "summary", Path: "/summary"}}, want: ErrReservedPageName},
		{name: "summary with trailing space", pages: []PageSpec{{Name: "Summary ", Path: "/summary"}}, want: ErrReservedPageName},
		{name: "slash", pages: []PageSpec{{Name: "Admin/Users", Path: "/admin/users"}}, want: ErrInvalidPageName},
		{name: "parent traversal", pages: []PageSpec{{Name: "../../etc/passwd", Path: "/"}}, want: ErrInvalidPageName},
		{name: "backslash", pages: []PageSpec{{Name: `..\evil`, Path: "/"}}, want: ErrInvalidPageName},
		{name: "summary inside a longer label", pages: []PageSpec{{Name: "Order Summary", Path: "/order"}}, want: nil},
		{name: "default pages", pages: DefaultPages(), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRegistry(tt.pages)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestArtifactSlug tests the label to file stem mapping.
func TestArtifactSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  string
	}{
		{label: "Home", want: "home"},
		{label: "User Settings", want: "user-settings"},
		{label: " Summary ", want: "summary"},
		{label: "Sign  Up\tPage", want: "sign-up-page"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			if got := ArtifactSlug(tt.label); got != tt.want {
				t.Errorf("ArtifactSlug(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

// TestApplyFile tests overlaying a configuration file onto defaults.
func TestApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil)
		if cfg.BaseURL != DefaultBaseURL {
			t.Errorf("expected default base URL, got %q", cfg.BaseURL)
		}
	})

	t.Run("overrides non-zero values", func(t *testing.T) {
		t.Parallel()

		headless := false
		cfg := NewConfig()
		cfg.ApplyFile(&File{
			BaseURL:   "http://127.0.0.1:8080",
			OutputDir: "out",
			Timeout:   45 * time.Second,
			Pages:     []PageSpec{{Name: "Only", Path: "/only"}},
			Headless:  &headless,
			AxeScript: "vendor/axe.min.js",
			Cookie:    "session=abc",
			Headers:   map[string]string{"X-Test": "1"},
		})

		if cfg.BaseURL != "http://127.0.0.1:8080" {
			t.Errorf("unexpected BaseURL %q", cfg.BaseURL)
		}
		if cfg.OutputDir != "out" {
			t.Errorf("unexpected OutputDir %q", cfg.OutputDir)
		}
		if cfg.NavigationTimeout != 45*time.Second {
			t.Errorf("unexpected timeout %v", cfg.NavigationTimeout)
		}
		if len(cfg.Pages) != 1 || cfg.Pages[0].Name != "Only" {
			t.Errorf("expected pages to be replaced, got %+v", cfg.Pages)
		}
		if cfg.Headless {
			t.Error("expected headless to be disabled")
		}
		if cfg.AxeScriptPath != "vendor/axe.min.js" {
			t.Errorf("unexpected AxeScriptPath %q", cfg.AxeScriptPath)
		}
		if cfg.Cookie != "session=abc" || cfg.Headers["X-Test"] != "1" {
			t.Errorf("unexpected auth settings: %q %v", cfg.Cookie, cfg.Headers)
		}
	})
}

// TestLoadConfigFile tests YAML loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("parses pages and timeout", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".a11yscan")
		content := `baseURL: http://localhost:5173
timeout: 10s
pages:
  - name: Home
    path: /
  - name: Sign Up
    path: /signup
headers:
  Authorization: Bearer abc
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.BaseURL != "http://localhost:5173" {
			t.Errorf("unexpected base URL %q", f.BaseURL)
		}
		if f.Timeout != 10*time.Second {
			t.Errorf("unexpected timeout %v", f.Timeout)
		}
		if len(f.Pages) != 2 || f.Pages[1].Name != "Sign Up" || f.Pages[1].Path != "/signup" {
			t.Errorf("unexpected pages %+v", f.Pages)
		}
		if f.Headers["Authorization"] != "Bearer abc" {
			t.Errorf("unexpected headers %v", f.Headers)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("pages: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

// TestFindConfigFile tests explicit path lookup.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}
