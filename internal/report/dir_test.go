package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/a11yscan/internal/config"
)

// TestEnsureDirectory tests idempotent directory creation.
func TestEnsureDirectory(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a", "b", "c")
		if err := EnsureDirectory(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory at %s", path)
		}
	})

	t.Run("existing directory is a no-op", func(t *testing.T) {
		t.Parallel()

		path := t.TempDir()
		marker := filepath.Join(path, "keep.txt")
		if err := os.WriteFile(marker, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}

		for i := 0; i < 2; i++ {
			if err := EnsureDirectory(path); err != nil {
				t.Fatalf("call %d: unexpected error: %v", i, err)
			}
		}
		if _, err := os.Stat(marker); err != nil {
			t.Error("expected existing contents to be preserved")
		}
	})

	t.Run("regular file at path fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "reports")
		if err := os.WriteFile(path, []byte("not a dir"), 0600); err != nil {
			t.Fatal(err)
		}

		err := EnsureDirectory(path)
		var dirErr *DirectoryCreationError
		if !errors.As(err, &dirErr) {
			t.Fatalf("expected DirectoryCreationError, got %v", err)
		}
		if dirErr.Path != path {
			t.Errorf("expected path %q, got %q", path, dirErr.Path)
		}
	})

	t.Run("regular file at parent fails", func(t *testing.T) {
		t.Parallel()

		parent := filepath.Join(t.TempDir(), "reports")
		if err := os.WriteFile(parent, []byte("not a dir"), 0600); err != nil {
			t.Fatal(err)
		}

		err := EnsureDirectory(filepath.Join(parent, "2025-01-01_00-00"))
		var dirErr *DirectoryCreationError
		if !errors.As(err, &dirErr) {
			t.Fatalf("expected DirectoryCreationError, got %v", err)
		}
	})
}

// TestTimestampedSubdirectory tests the run directory naming.
func TestTimestampedSubdirectory(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 7, 9, 5, 59, 0, time.UTC)

	got := TimestampedSubdirectory("reports", now)
	want := filepath.Join("reports", "2025-03-07_09-05")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	t.Run("same minute shares a directory", func(t *testing.T) {
		t.Parallel()

		later := now.Add(-30 * time.Second)
		if TimestampedSubdirectory("reports", later) != got {
			t.Error("expected runs in the same minute to collide")
		}
	})
}

// TestArtifactName tests page label to file name mapping.
func TestArtifactName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		label    string
		expected string
	}{
		{"Home", "home.json"},
		{"User Settings", "user-settings.json"},
		{"Sign  Up\tPage", "sign-up-page.json"},
		{"ALREADY-hyphen", "already-hyphen.json"},
		{" Padded Label ", "padded-label.json"},
	}

	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			t.Parallel()
			if got := ArtifactName(tc.label); got != tc.expected {
				t.Errorf("ArtifactName(%q) = %q, expected %q", tc.label, got, tc.expected)
			}
		})
	}

	t.Run("registered labels never name a summary file", func(t *testing.T) {
		t.Parallel()

		r := config.MustRegistry(config.DefaultPages())
		for _, p := range r.Pages() {
			switch name := ArtifactName(p.Name); name {
			case SummaryJSONFile, SummaryHTMLFile, SummaryMarkdownFile:
				t.Errorf("page %q maps to summary file %s", p.Name, name)
			}
		}
	})
}
