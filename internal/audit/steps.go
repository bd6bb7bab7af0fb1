package audit

import (
	"context"
	"time"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/pipeline"
	"github.com/nao1215/a11yscan/internal/report"
)

// pageAudit is the state passed through the per-page pipeline.
// Each step fills in the fields the following steps read.
type pageAudit struct {
	spec config.PageSpec
	url  string
	dir  string
	page Page

	raw      []byte
	decoded  model.AnalysisResults
	artifact string
	result   model.PageAuditResult
}

// navigateStep loads the page and waits for network quiescence.
type navigateStep struct {
	timeout time.Duration
}

// Name returns the step name.
func (s *navigateStep) Name() string {
	return "navigate"
}

// Do executes the navigation.
func (s *navigateStep) Do(ctx context.Context, pa *pageAudit) error {
	if err := pa.page.Navigate(ctx, pa.url, s.timeout); err != nil {
		return &NavigationError{Page: pa.spec.Name, URL: pa.url, Err: err}
	}
	return nil
}

// analyzeStep runs axe-core and decodes its result.
type analyzeStep struct{}

// Name returns the step name.
func (analyzeStep) Name() string {
	return "analyze"
}

// Do executes the analysis.
func (analyzeStep) Do(ctx context.Context, pa *pageAudit) error {
	raw, err := pa.page.Analyze(ctx)
	if err != nil {
		return &AnalysisError{Page: pa.spec.Name, Err: err}
	}
	decoded, err := model.DecodeAnalysisResults(raw)
	if err != nil {
		return &AnalysisError{Page: pa.spec.Name, Err: err}
	}
	pa.raw = raw
	pa.decoded = decoded
	return nil
}

// artifactStep writes the raw analysis result to <dir>/<slug>.json.
func artifactStep() pipeline.Step[*pageAudit] {
	return pipeline.NewStepFunc("artifact", func(_ context.Context, pa *pageAudit) error {
		path, err := report.WriteRawResult(pa.dir, pa.spec.Name, pa.raw)
		if err != nil {
			return err
		}
		pa.artifact = path
		return nil
	})
}

// tallyStep reduces the decoded result to a summary row.
func tallyStep() pipeline.Step[*pageAudit] {
	return pipeline.NewStepFunc("tally", func(_ context.Context, pa *pageAudit) error {
		pa.result = model.NewPageAuditResult(pa.spec.Name, pa.spec.Path, pa.decoded)
		return nil
	})
}
