package pipeline

import (
	"context"
	"log/slog"
)

// Step is one stage of a pipeline over targets of type T.
// Steps run in sequence and share the same target, so a later step can
// read what an earlier one stored.
//
// Design decision: Steps share one mutable target instead of passing
// values from step to step. The page audit's steps produce different
// things (raw bytes, decoded results, a file path, a summary row), and a
// single struct keeps their signatures identical.
type Step[T any] interface {
	// Do executes the step against target.
	// Returning an error marks the target as failed.
	Do(ctx context.Context, target T) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// StepFunc adapts a plain function into a named Step.
type StepFunc[T any] struct {
	name string
	fn   func(ctx context.Context, target T) error
}

// NewStepFunc returns a Step that calls fn.
func NewStepFunc[T any](name string, fn func(ctx context.Context, target T) error) *StepFunc[T] {
	return &StepFunc[T]{name: name, fn: fn}
}

// Do calls the wrapped function.
func (s *StepFunc[T]) Do(ctx context.Context, target T) error {
	return s.fn(ctx, target)
}

// Name returns the step name.
func (s *StepFunc[T]) Name() string {
	return s.name
}

// settings holds the pipeline options.
type settings struct {
	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*settings)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// Pipeline runs an ordered list of steps against one target.
type Pipeline[T any] struct {
	steps []Step[T]
	settings
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New[T any](opts ...Option) *Pipeline[T] {
	p := &Pipeline[T]{
		steps: make([]Step[T], 0),
	}
	for _, opt := range opts {
		opt(&p.settings)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline[T]) AddStep(step Step[T]) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline[T]) AddSteps(steps ...Step[T]) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence against target and stops at the
// first failing step. That step's error is returned unchanged, so callers
// can match it with errors.As.
//
// Design decision: There is no continue-on-error mode. Every step needs
// the output of the one before it; analyzing a page that never loaded
// would only produce a second, misleading error.
//
// Cancellation is checked before each step; a step that is already
// running is expected to honor ctx itself.
func (p *Pipeline[T]) Execute(ctx context.Context, target T) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step", "step", step.Name())

		if err := step.Do(ctx, target); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed", "step", step.Name())
	}

	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline[T]) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
