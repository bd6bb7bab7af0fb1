package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/a11yscan/internal/smoke"
)

// TestRunSmoke tests browser resolution and launching.
func TestRunSmoke(t *testing.T) {
	t.Parallel()

	newLauncher := func(goos string, calls *[]string) *smoke.Launcher {
		return smoke.NewLauncher(
			smoke.WithGOOS(goos),
			smoke.WithLogger(discardLogger()),
			smoke.WithRunFunc(func(_ context.Context, name string, args ...string) error {
				*calls = append(*calls, name+" "+strings.Join(args, " "))
				return nil
			}),
		)
	}
	noPrompt := func([]smoke.Browser) (smoke.Browser, error) {
		return smoke.Browser{}, errors.New("prompt must not be shown")
	}

	t.Run("browser flag", func(t *testing.T) {
		t.Parallel()

		var calls []string
		var out bytes.Buffer
		err := runSmoke(context.Background(), &out, newLauncher("darwin", &calls), noPrompt, "safari", "http://localhost:3000")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(calls) != 1 || calls[0] != "open -a Safari http://localhost:3000" {
			t.Errorf("unexpected calls %v", calls)
		}
		if !strings.Contains(out.String(), "Smoke test: Safari") {
			t.Errorf("expected checklist, got:\n%s", out.String())
		}
	})

	t.Run("menu choice", func(t *testing.T) {
		t.Parallel()

		var calls []string
		var offered []string
		choose := func(available []smoke.Browser) (smoke.Browser, error) {
			for _, b := range available {
				offered = append(offered, b.ID)
			}
			return available[len(available)-1], nil
		}
		err := runSmoke(context.Background(), &bytes.Buffer{}, newLauncher("linux", &calls), choose, "", "http://x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Join(offered, ",") != "chrome,firefox,edge" {
			t.Errorf("unexpected menu %v", offered)
		}
		if len(calls) != 1 || !strings.HasPrefix(calls[0], "microsoft-edge") {
			t.Errorf("unexpected calls %v", calls)
		}
	})

	t.Run("unknown browser", func(t *testing.T) {
		t.Parallel()

		var calls []string
		err := runSmoke(context.Background(), &bytes.Buffer{}, newLauncher("linux", &calls), noPrompt, "lynx", "http://x")
		if !errors.Is(err, smoke.ErrUnknownBrowser) {
			t.Errorf("expected ErrUnknownBrowser, got %v", err)
		}
		if len(calls) != 0 {
			t.Errorf("expected no launch, got %v", calls)
		}
	})

	t.Run("no browsers on platform", func(t *testing.T) {
		t.Parallel()

		var calls []string
		if err := runSmoke(context.Background(), &bytes.Buffer{}, newLauncher("plan9", &calls), noPrompt, "", "http://x"); err == nil {
			t.Error("expected error")
		}
	})
}
