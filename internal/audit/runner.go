package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/pipeline"
	"github.com/nao1215/a11yscan/internal/report"
)

// Config is the immutable input of a Runner.
type Config struct {
	// BaseURL is prefixed to every page path.
	BaseURL string

	// Registry is the ordered list of pages to audit.
	Registry config.Registry

	// OutputDir is the base report directory. Each run writes into a
	// timestamped subdirectory of it.
	OutputDir string

	// NavigationTimeout bounds each navigation. Zero means
	// config.DefaultNavigationTimeout.
	NavigationTimeout time.Duration
}

// Runner audits every registered page, one at a time, and writes the
// per-page and summary artifacts of the run.
//
// Design decision: Pages are audited sequentially, never in parallel.
// We chose this because:
//  1. All pages share one browser process, and concurrent navigations
//     compete for it and skew network-idle detection.
//  2. Each page gets a fresh incognito context, so nothing leaks from one
//     audit into the next, and closing it before the next page opens
//     keeps that guarantee easy to check.
//
// The registry is small, so the lost parallelism is not worth the noise.
type Runner struct {
	cfg      Config
	launch   LaunchFunc
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
	newID    func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Page failures are logged at error level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithObserver sets a progress observer, e.g. the console printer.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}

// WithClock sets the clock that stamps the run.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithIDGenerator sets the run ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		r.newID = fn
	}
}

// NewRunner creates a Runner. The browser is started by launch only after
// the report directories exist.
func NewRunner(cfg Config, launch LaunchFunc, opts ...Option) *Runner {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = config.DefaultNavigationTimeout
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	r := &Runner{
		cfg:      cfg,
		launch:   launch,
		logger:   slog.Default(),
		observer: nopObserver{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one audit run.
//
// Directory and browser launch failures are fatal and returned before any
// page is audited. A page that fails to load or analyze is logged,
// recorded in RunReport.Failures and skipped; the run still succeeds.
// The returned report is non-nil even when err is non-nil.
func (r *Runner) Run(ctx context.Context) (*model.RunReport, error) {
	started := r.now()
	run := model.NewRunReport(r.newID(), started, r.cfg.BaseURL, r.cfg.Registry.Len())

	if err := report.EnsureDirectory(r.cfg.OutputDir); err != nil {
		return run, err
	}
	dir := report.TimestampedSubdirectory(r.cfg.OutputDir, started)
	if err := report.EnsureDirectory(dir); err != nil {
		return run, err
	}
	run.Dir = dir

	session, err := r.launch(ctx)
	if err != nil {
		var launchErr *SessionLaunchError
		if !errors.As(err, &launchErr) {
			err = &SessionLaunchError{Err: err}
		}
		return run, err
	}
	sessionOpen := true
	defer func() {
		if sessionOpen {
			r.closeSession(session)
		}
	}()

	if err := run.Advance(model.StateAuditing); err != nil {
		return run, err
	}
	r.logger.Info("audit started", "run_id", run.ID, "pages", run.PagesTotal, "dir", dir)

	pages := r.cfg.Registry.Pages()
	for i, spec := range pages {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("audit cancelled", "remaining", len(pages)-i, "reason", err)
			return run, err
		}

		r.observer.PageStarted(spec.Name, spec.Path, i, len(pages))

		pa, err := r.auditPage(ctx, session, dir, spec)
		if err != nil {
			r.logger.Error("page audit failed",
				"page", spec.Name,
				"path", spec.Path,
				"error", err,
			)
			r.observer.PageFailed(spec.Name, spec.Path, err)
			if ferr := run.Fail(model.PageFailure{
				Page:    spec.Name,
				Path:    spec.Path,
				Kind:    FailureKind(err),
				Message: err.Error(),
			}); ferr != nil {
				return run, ferr
			}
			continue
		}

		if err := run.Append(pa.result); err != nil {
			return run, err
		}
		r.observer.PageAudited(PageOutcome{
			Name:       spec.Name,
			Path:       spec.Path,
			Violations: pa.result.Violations,
			Critical:   pa.result.ViolationsByImpact.Critical,
			Serious:    pa.result.ViolationsByImpact.Serious,
			Artifact:   pa.artifact,
		})
	}

	if err := report.WriteSummaries(ctx, run, dir); err != nil {
		return run, fmt.Errorf("write summaries: %w", err)
	}

	sessionOpen = false
	r.closeSession(session)

	if err := run.Advance(model.StateFinalized); err != nil {
		return run, err
	}
	r.logger.Info("audit finished",
		"run_id", run.ID,
		"audited", len(run.Results),
		"failed", len(run.Failures),
		"violations", run.TotalViolations(),
	)
	return run, nil
}

// auditPage runs the per-page pipeline in a fresh isolated page.
// The page is closed before returning, whatever the outcome.
func (r *Runner) auditPage(ctx context.Context, session Session, dir string, spec config.PageSpec) (*pageAudit, error) {
	pa := &pageAudit{
		spec: spec,
		url:  r.cfg.BaseURL + spec.Path,
		dir:  dir,
	}

	page, err := session.NewPage(ctx)
	if err != nil {
		return nil, &NavigationError{Page: spec.Name, URL: pa.url, Err: fmt.Errorf("open page: %w", err)}
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			r.logger.Warn("failed to close page", "page", spec.Name, "error", cerr)
		}
	}()
	pa.page = page

	p := pipeline.New[*pageAudit](pipeline.WithLogger(r.logger.With("page", spec.Name)))
	p.AddSteps(
		&navigateStep{timeout: r.cfg.NavigationTimeout},
		analyzeStep{},
		artifactStep(),
		tallyStep(),
	)
	r.logger.Debug("auditing page", "page", spec.Name, "url", pa.url, "steps", p.StepNames())
	if err := p.Execute(ctx, pa); err != nil {
		return nil, err
	}
	return pa, nil
}

// closeSession closes the browser and logs a failure.
func (r *Runner) closeSession(s Session) {
	if err := s.Close(); err != nil {
		r.logger.Warn("failed to close browser session", "error", err)
	}
}

// FailureKind classifies a page error for model.PageFailure.
func FailureKind(err error) string {
	var navErr *NavigationError
	var analysisErr *AnalysisError
	switch {
	case errors.As(err, &navErr):
		return KindNavigation
	case errors.As(err, &analysisErr):
		return KindAnalysis
	default:
		return KindArtifact
	}
}
