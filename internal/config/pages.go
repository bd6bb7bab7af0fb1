package config

import (
	"fmt"
	"regexp"
	"strings"
)

// reservedSlug is the artifact slug of the run summaries
// (summary.json, summary.html, summary.md), which share the run directory
// with the per-page results.
const reservedSlug = "summary"

var whitespaceRun = regexp.MustCompile(`\s+`)

// ArtifactSlug returns the file name stem of a page's raw result:
// surrounding space is trimmed, inner whitespace runs become hyphens and
// the result is lower-cased. "User Settings" becomes "user-settings".
func ArtifactSlug(label string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(label), "-"))
}

// PageSpec is one route of the application to audit.
type PageSpec struct {
	// Name is the display label. It is unique within a registry and also
	// names the per-page report file.
	Name string `yaml:"name" json:"name"`

	// Path is the route appended to the base URL, e.g. "/login".
	Path string `yaml:"path" json:"path"`
}

// DefaultPages returns the built-in page registry of the frontend.
// A fresh slice is returned on every call.
func DefaultPages() []PageSpec {
	return []PageSpec{
		{Name: "Home", Path: "/"},
		{Name: "Login", Path: "/login"},
		{Name: "Dashboard", Path: "/dashboard"},
		{Name: "Settings", Path: "/settings"},
		{Name: "Profile", Path: "/profile"},
	}
}

// Registry is a validated, read-only, ordered list of pages.
// The zero value is an empty registry.
type Registry struct {
	pages []PageSpec
}

// NewRegistry validates pages and freezes them into a Registry.
// The input slice is copied, so later changes to it are not observed.
//
// Labels are checked against the artifact file they produce: two labels
// with the same slug ("Home" and "home ") are duplicates, and a label
// must not name a summary file or contain a path separator.
func NewRegistry(pages []PageSpec) (Registry, error) {
	if len(pages) == 0 {
		return Registry{}, ErrNoPages
	}

	seen := make(map[string]string, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Name) == "" {
			return Registry{}, ErrEmptyPageName
		}
		if strings.ContainsAny(p.Name, `/\`) {
			return Registry{}, fmt.Errorf("%w: %q", ErrInvalidPageName, p.Name)
		}
		if !strings.HasPrefix(p.Path, "/") {
			return Registry{}, fmt.Errorf("%w: %q (%s)", ErrInvalidPagePath, p.Path, p.Name)
		}

		slug := ArtifactSlug(p.Name)
		if slug == reservedSlug {
			return Registry{}, fmt.Errorf("%w: %q", ErrReservedPageName, p.Name)
		}
		if prev, dup := seen[slug]; dup {
			return Registry{}, fmt.Errorf("%w: %q and %q", ErrDuplicatePage, prev, p.Name)
		}
		seen[slug] = p.Name
	}

	return Registry{pages: append([]PageSpec(nil), pages...)}, nil
}

// MustRegistry is like NewRegistry but panics on invalid input.
// It is intended for package-level defaults and tests.
func MustRegistry(pages []PageSpec) Registry {
	r, err := NewRegistry(pages)
	if err != nil {
		panic(err)
	}
	return r
}

// Pages returns a copy of the registered pages in audit order.
func (r Registry) Pages() []PageSpec {
	return append([]PageSpec(nil), r.pages...)
}

// Len returns the number of registered pages.
func (r Registry) Len() int {
	return len(r.pages)
}
