package report

import (
	"context"
	"io"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/a11yscan/internal/model"
)

// Writer defines the interface for run summary output.
// Implementations write a finished run in one format.
type Writer interface {
	// Write outputs the run to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.RunReport) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// WriteSummaries writes summary.json, summary.html and summary.md for a
// finished run into dir and returns the first error.
// Nothing is written if ctx is already done.
//
// Design decision: The three files are written concurrently with a plain
// errgroup.Group, not one derived from ctx. Each writer only reads run, so
// they cannot interfere, and a failure in one should not abort the others
// halfway: a reader still gets every summary that could be written.
func WriteSummaries(ctx context.Context, run *model.RunReport, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var g errgroup.Group

	g.Go(func() error {
		return WriteSummaryJSON(run.Results, dir)
	})
	g.Go(func() error {
		return writeFile(filepath.Join(dir, SummaryHTMLFile), func(out io.Writer) error {
			_, err := NewHTMLWriter(out).Write(run)
			return err
		})
	})
	g.Go(func() error {
		return writeFile(filepath.Join(dir, SummaryMarkdownFile), func(out io.Writer) error {
			_, err := NewMarkdownWriter(out).Write(run)
			return err
		})
	})

	return g.Wait()
}
