package smoke

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestLookup tests browser lookup by ID.
func TestLookup(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{"chrome", "Google Chrome", false},
		{" Firefox ", "Mozilla Firefox", false},
		{"EDGE", "Microsoft Edge", false},
		{"opera", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			t.Parallel()

			b, err := Lookup(tc.id)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownBrowser) {
					t.Errorf("expected ErrUnknownBrowser, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Name != tc.want {
				t.Errorf("got %q, want %q", b.Name, tc.want)
			}
		})
	}
}

// TestCommand tests argv construction per platform.
func TestCommand(t *testing.T) {
	t.Parallel()

	chrome, _ := Lookup("chrome")
	safari, _ := Lookup("safari")
	const url = "http://localhost:3000"

	testCases := []struct {
		name    string
		browser Browser
		goos    string
		want    []string
		wantErr bool
	}{
		{"chrome darwin", chrome, "darwin", []string{"open", "-a", "Google Chrome", url}, false},
		{"chrome linux", chrome, "linux", []string{"google-chrome", url}, false},
		{"chrome windows", chrome, "windows", []string{"cmd", "/c", "start", "chrome", url}, false},
		{"safari linux", safari, "linux", nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.browser.Command(tc.goos, url)
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedPlatform) {
					t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
				}
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("argv mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestAvailable tests platform filtering.
func TestAvailable(t *testing.T) {
	t.Parallel()

	ids := func(bs []Browser) []string {
		out := make([]string, len(bs))
		for i, b := range bs {
			out[i] = b.ID
		}
		return out
	}

	if diff := cmp.Diff([]string{"chrome", "firefox", "safari", "edge"}, ids(Available("darwin"))); diff != "" {
		t.Errorf("darwin mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"chrome", "firefox", "edge"}, ids(Available("linux"))); diff != "" {
		t.Errorf("linux mismatch (-want +got):\n%s", diff)
	}
	if len(Available("plan9")) != 0 {
		t.Error("expected no browsers on plan9")
	}
	if len(Browsers()) != 4 {
		t.Error("expected four browsers in the table")
	}
}

// TestLauncherOpen tests that the command is handed to the runner.
func TestLauncherOpen(t *testing.T) {
	t.Parallel()

	var gotName string
	var gotArgs []string
	l := NewLauncher(
		WithGOOS("linux"),
		WithRunFunc(func(_ context.Context, name string, args ...string) error {
			gotName = name
			gotArgs = args
			return nil
		}),
	)

	firefox, _ := Lookup("firefox")
	if err := l.Open(context.Background(), firefox, "http://localhost:3000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotName != "firefox" || len(gotArgs) != 1 || gotArgs[0] != "http://localhost:3000" {
		t.Errorf("unexpected command %s %v", gotName, gotArgs)
	}

	t.Run("runner error is wrapped", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("executable file not found")
		l := NewLauncher(WithGOOS("linux"), WithRunFunc(func(context.Context, string, ...string) error {
			return cause
		}))
		if err := l.Open(context.Background(), firefox, "http://x"); !errors.Is(err, cause) {
			t.Errorf("expected wrapped cause, got %v", err)
		}
	})

	t.Run("unsupported platform does not run", func(t *testing.T) {
		t.Parallel()

		called := false
		l := NewLauncher(WithGOOS("linux"), WithRunFunc(func(context.Context, string, ...string) error {
			called = true
			return nil
		}))
		safari, _ := Lookup("safari")
		if err := l.Open(context.Background(), safari, "http://x"); err == nil || called {
			t.Error("expected error without running a command")
		}
	})
}

// TestPrintChecklist tests the printed checklist.
func TestPrintChecklist(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	edge, _ := Lookup("edge")
	PrintChecklist(&buf, edge, "http://localhost:3000")

	output := buf.String()
	if !strings.Contains(output, "Smoke test: Microsoft Edge") {
		t.Errorf("expected title, got:\n%s", output)
	}
	for i := range Checklist {
		if !strings.Contains(output, Checklist[i]) {
			t.Errorf("missing checklist item %q", Checklist[i])
		}
	}
}
