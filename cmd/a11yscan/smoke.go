package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/smoke"
)

// chooseFunc picks a browser from the available ones.
type chooseFunc func(available []smoke.Browser) (smoke.Browser, error)

// NewSmokeCmd creates the smoke command.
func NewSmokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Open the application in a local browser for manual testing",
		Long: `Smoke opens the application in a locally installed browser and prints a
checklist for a manual accessibility smoke test.

Without --browser, a menu lists the browsers that can be launched on this
operating system.

Examples:
  # Pick a browser from a menu
  a11yscan smoke

  # Open Firefox directly
  a11yscan smoke --browser firefox

  # Open another address
  a11yscan smoke -b chrome --url http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: runSmokeCmd,
	}

	cmd.Flags().StringP("browser", "b", "",
		"Browser to open: chrome, firefox, safari or edge")
	cmd.Flags().StringP("url", "u", config.DefaultBaseURL,
		"Address to open")

	return cmd
}

// runSmokeCmd executes the smoke command.
func runSmokeCmd(cmd *cobra.Command, _ []string) error {
	browserID, err := cmd.Flags().GetString("browser")
	if err != nil {
		return err
	}
	url, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}

	// A discovered configuration file supplies the base URL unless --url is set.
	if !cmd.Flags().Changed("url") {
		if path := config.FindConfigFile(""); path != "" {
			if file, err := config.LoadConfigFile(path); err == nil && file.BaseURL != "" {
				url = file.BaseURL
			}
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	launcher := smoke.NewLauncher()
	return runSmoke(ctx, cmd.OutOrStdout(), launcher, promptBrowser, browserID, url)
}

// runSmoke resolves the browser, opens url in it and prints the checklist.
func runSmoke(ctx context.Context, out io.Writer, launcher *smoke.Launcher, choose chooseFunc, browserID, url string) error {
	var (
		b   smoke.Browser
		err error
	)
	if browserID != "" {
		b, err = smoke.Lookup(browserID)
	} else {
		available := smoke.Available(launcher.GOOS())
		if len(available) == 0 {
			return fmt.Errorf("no supported browser on %s", launcher.GOOS())
		}
		b, err = choose(available)
	}
	if err != nil {
		return err
	}

	if err := launcher.Open(ctx, b, url); err != nil {
		return err
	}
	smoke.PrintChecklist(out, b, url)
	return nil
}

// promptBrowser shows a single-choice menu of browsers.
func promptBrowser(available []smoke.Browser) (smoke.Browser, error) {
	options := make([]huh.Option[string], len(available))
	for i, b := range available {
		options[i] = huh.NewOption(b.Name, b.ID)
	}

	var selected string
	selectField := huh.NewSelect[string]().
		Title("Which browser should open the application?").
		Options(options...).
		Value(&selected)

	if err := huh.NewForm(huh.NewGroup(selectField)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return smoke.Browser{}, errors.New("smoke test cancelled")
		}
		return smoke.Browser{}, fmt.Errorf("prompt failed: %w", err)
	}
	return smoke.Lookup(selected)
}
