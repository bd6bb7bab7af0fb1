package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/a11yscan/internal/model"
)

// File names written into a run directory.
const (
	SummaryJSONFile     = "summary.json"
	SummaryHTMLFile     = "summary.html"
	SummaryMarkdownFile = "summary.md"
)

// filePerm is the permission for written report files.
const filePerm = 0600

// JSONWriter outputs the ordered list of page results as a JSON array.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run's results verbatim, in registry order.
// Failed pages are not part of the array.
func (w *JSONWriter) Write(run *model.RunReport) (int, error) {
	return w.WriteResults(run.Results)
}

// WriteResults outputs results as a JSON array. A nil slice is written as [].
func (w *JSONWriter) WriteResults(results []model.PageAuditResult) (int, error) {
	if results == nil {
		results = []model.PageAuditResult{}
	}
	return w.writeJSON(results)
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// WriteSummaryJSON writes results to dir/summary.json.
func WriteSummaryJSON(results []model.PageAuditResult, dir string) error {
	return writeFile(filepath.Join(dir, SummaryJSONFile), func(out io.Writer) error {
		_, err := NewJSONWriter(out, WithPrettyPrint()).WriteResults(results)
		return err
	})
}

// WriteRawResult writes an analysis result, unchanged apart from
// indentation, to dir/<artifact name of label>. It returns the file path.
func WriteRawResult(dir, label string, raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("raw result for %s is not valid JSON: %w", label, err)
	}
	buf.WriteByte('\n')

	path := filepath.Join(dir, ArtifactName(label))
	if err := os.WriteFile(path, buf.Bytes(), filePerm); err != nil {
		return "", fmt.Errorf("write raw result for %s: %w", label, err)
	}
	return path, nil
}

// writeFile creates or truncates path and hands it to fn.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm) //nolint:gosec // path is built from the run directory
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
