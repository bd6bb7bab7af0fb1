package axe

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-rod/rod"
)

// RunJS runs axe-core against the whole document and returns the result
// serialized as a JSON string, so the caller receives it byte for byte.
const RunJS = `async () => {
	if (typeof window.axe === "undefined") {
		throw new Error("axe-core is not loaded");
	}
	const results = await window.axe.run(document);
	return JSON.stringify(results);
}`

// loadedJS reports whether axe-core is already present in the page.
const loadedJS = `() => typeof window.axe !== "undefined"`

// ErrNoSource is returned when a Script has neither a URL nor a source.
var ErrNoSource = errors.New("axe-core script has no source")

// Script is the axe-core distribution injected into audited pages.
// Source wins over URL when both are set.
type Script struct {
	// URL is a remote axe.min.js.
	URL string

	// Source is the inline script text, usually read from a local file.
	Source string
}

// Load returns the Script for a local path or, when path is empty, url.
func Load(path, url string) (Script, error) {
	if path == "" {
		if url == "" {
			return Script{}, ErrNoSource
		}
		return Script{URL: url}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's configuration
	if err != nil {
		return Script{}, fmt.Errorf("read axe-core script: %w", err)
	}
	if len(data) == 0 {
		return Script{}, fmt.Errorf("%w: %s is empty", ErrNoSource, path)
	}
	return Script{Source: string(data)}, nil
}

// Inject adds the script to page unless axe-core is already loaded.
func (s Script) Inject(page *rod.Page) error {
	if s.URL == "" && s.Source == "" {
		return ErrNoSource
	}

	res, err := page.Eval(loadedJS)
	if err == nil && res.Value.Bool() {
		return nil
	}

	if s.Source != "" {
		err = page.AddScriptTag("", s.Source)
	} else {
		err = page.AddScriptTag(s.URL, "")
	}
	if err != nil {
		return fmt.Errorf("inject axe-core: %w", err)
	}
	return nil
}

// Run injects axe-core into page, analyzes it and returns the raw JSON result.
func (s Script) Run(page *rod.Page) ([]byte, error) {
	if err := s.Inject(page); err != nil {
		return nil, err
	}

	res, err := page.Eval(RunJS)
	if err != nil {
		return nil, fmt.Errorf("run axe-core: %w", err)
	}

	out := res.Value.Str()
	if out == "" {
		return nil, errors.New("run axe-core: empty result")
	}
	return []byte(out), nil
}
