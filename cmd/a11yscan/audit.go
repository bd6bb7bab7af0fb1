package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/audit"
	"github.com/nao1215/a11yscan/internal/axe"
	"github.com/nao1215/a11yscan/internal/browser"
	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	a11ylog "github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit every registered page with axe-core",
		Long: `Audit loads each registered page in its own isolated browser context,
waits for the network to go idle, runs axe-core and saves the raw result.

Pages are audited one at a time, in registry order. A page that fails to
load or analyze is logged and skipped; the remaining pages are still
audited. When every page has been attempted, summary.json, summary.html
and summary.md are written next to the per-page results.

With no flags, the default pages of http://localhost:3000 are audited into
./a11y-reports/YYYY-MM-DD_HH-MM/.

Examples:
  # Audit the default pages
  a11yscan audit

  # Audit a different port and write reports elsewhere
  a11yscan audit --base-url http://localhost:8080 --output /tmp/reports

  # Use a local axe-core build and a longer timeout
  a11yscan audit --axe-script node_modules/axe-core/axe.min.js --timeout 60s

  # Watch the browser while auditing
  a11yscan audit --headless=false`,
		Args: cobra.NoArgs,
		RunE: runAuditCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yscan in current or home directory)")
	cmd.Flags().StringP("base-url", "u", config.DefaultBaseURL,
		"Address of the locally served application")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Base report directory")
	cmd.Flags().DurationP("timeout", "t", config.DefaultNavigationTimeout,
		"Timeout for each page navigation")
	cmd.Flags().Bool("headless", true,
		"Run the browser without a window")
	cmd.Flags().StringP("axe-script", "a", "",
		"Local axe.min.js to inject instead of the CDN copy")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	// Terminal report flags
	cmd.Flags().BoolP("json", "j", false,
		"Print the page results as JSON instead of a text table")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the run summary as Markdown instead of a text table")
	cmd.Flags().Bool("log-json", false,
		"Write logs to stderr as JSON")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}
	logger := a11ylog.NewLogger(os.Stderr, cfg.Verbose)
	if logJSON {
		logger = a11ylog.NewJSONLogger(os.Stderr, cfg.Verbose)
	}
	slog.SetDefault(logger)

	summary, err := summaryWriter(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	script, err := axe.Load(cfg.AxeScriptPath, cfg.AxeScriptURL)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	launch := browser.Launcher(browser.Options{
		Bin:      cfg.BrowserBin,
		Headless: cfg.Headless,
		Script:   script,
		Cookie:   cfg.Cookie,
		Headers:  cfg.Headers,
		Logger:   logger,
	})

	return runAudit(ctx, cfg, launch, cmd.OutOrStdout(), summary, logger)
}

// summaryWriter returns the terminal report writer selected by the flags.
func summaryWriter(cmd *cobra.Command, out io.Writer) (report.Writer, error) {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	switch {
	case jsonOutput:
		return report.NewJSONWriter(out, report.WithPrettyPrint()), nil
	case markdownOutput:
		return report.NewMarkdownWriter(out), nil
	default:
		return report.NewSimpleWriter(out), nil
	}
}

// buildConfig creates a Config from defaults, the configuration file and
// the flags, in that order. Only flags set on the command line override
// the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; a discovered file is optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if cfg.OutputDir, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.NavigationTimeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("headless") {
		if cfg.Headless, err = flags.GetBool("headless"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("axe-script") {
		if cfg.AxeScriptPath, err = flags.GetString("axe-script"); err != nil {
			return nil, err
		}
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	return cfg, nil
}

// runAudit runs one audit with an already validated configuration, prints
// the run through summary and records it in the history database.
// A nil summary prints nothing beyond the progress lines.
func runAudit(ctx context.Context, cfg *config.Config, launch audit.LaunchFunc, out io.Writer, summary report.Writer, logger *slog.Logger) error {
	registry, err := config.NewRegistry(cfg.Pages)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	console := a11ylog.NewConsole(out)
	runner := audit.NewRunner(audit.Config{
		BaseURL:           cfg.BaseURL,
		Registry:          registry,
		OutputDir:         cfg.OutputDir,
		NavigationTimeout: cfg.NavigationTimeout,
	}, launch,
		audit.WithLogger(logger),
		audit.WithObserver(console),
	)

	logger.Info("starting audit",
		"base_url", cfg.BaseURL,
		"pages", registry.Len(),
		"output", cfg.OutputDir,
		"save_history", cfg.SaveHistory,
	)

	run, err := runner.Run(ctx)
	if err != nil {
		return describeFatal(err)
	}
	if summary != nil {
		fmt.Fprintln(out)
		if _, err := summary.Write(run); err != nil {
			logger.Error("failed to print run summary", "error", err)
		}
	}
	console.Done(run)

	if cfg.SaveHistory {
		if err := saveRun(ctx, cfg.DBDir, run, logger); err != nil {
			// History is optional; the reports are already on disk.
			logger.Error("failed to record run history", "error", err)
		}
	}
	return nil
}

// describeFatal adds a hint for the fatal errors of a run.
func describeFatal(err error) error {
	var launchErr *audit.SessionLaunchError
	switch {
	case errors.As(err, &launchErr):
		return fmt.Errorf("%w (is Chromium installed? set browserBin in .a11yscan to point at it)", err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("audit cancelled, no summary was written: %w", err)
	default:
		return err
	}
}

// saveRun records a finished run in the history database.
func saveRun(ctx context.Context, dbDir string, run *model.RunReport, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, run)
	if err != nil {
		return err
	}
	logger.Info("run recorded", "id", id, "run_id", run.ID, "db", db.Path())
	return nil
}
