package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/a11yscan/internal/config"
)

// TimestampLayout names run directories, e.g. "2025-06-01_14-05".
const TimestampLayout = "2006-01-02_15-04"

// dirPerm is the permission for created report directories.
const dirPerm = 0750

// DirectoryCreationError is returned when a report directory cannot be
// created. It is fatal: the run aborts before any page is audited.
type DirectoryCreationError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("create report directory %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DirectoryCreationError) Unwrap() error {
	return e.Err
}

// errNotDirectory is the cause reported when a regular file blocks the path.
var errNotDirectory = errors.New("path exists and is not a directory")

// EnsureDirectory creates path and its parents if they are absent.
// It is a no-op for an existing directory. A regular file at path, or at
// any parent, and permission failures yield a *DirectoryCreationError.
func EnsureDirectory(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return &DirectoryCreationError{Path: path, Err: errNotDirectory}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return &DirectoryCreationError{Path: path, Err: err}
	}

	if err := os.MkdirAll(path, dirPerm); err != nil {
		return &DirectoryCreationError{Path: path, Err: err}
	}
	return nil
}

// TimestampedSubdirectory returns base joined with now formatted as
// YYYY-MM-DD_HH-MM. Two runs within the same minute share a directory and
// the later one overwrites the earlier files.
func TimestampedSubdirectory(base string, now time.Time) string {
	return filepath.Join(base, now.Format(TimestampLayout))
}

// ArtifactName returns the per-page report file name for a page label,
// e.g. "User Settings" becomes "user-settings.json".
// config.NewRegistry guarantees that registered labels map to distinct
// names that never collide with the summary files.
func ArtifactName(label string) string {
	return config.ArtifactSlug(label) + ".json"
}
