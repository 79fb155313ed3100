package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/phishscan/internal/model"
)

// JSONWriter renders reports and other values as JSON.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
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

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full check report.
func (w *JSONWriter) Write(report *model.CheckReport) (int, error) {
	return w.writeJSON(report)
}

// WriteSimple outputs only the simple report.
func (w *JSONWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	return w.writeJSON(report)
}

// WriteAll outputs the reports as one JSON array.
func (w *JSONWriter) WriteAll(reports []*model.CheckReport) error {
	if reports == nil {
		reports = []*model.CheckReport{}
	}
	_, err := w.writeJSON(reports)
	return err
}

// WriteValue outputs an arbitrary value with the writer's formatting.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	return w.writeJSON(v)
}

// writeJSON encodes v on one line, or indented, followed by a newline.
// HTML escaping is off: query strings keep their '&' and '<'.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

// JSONReport wraps a check report with tool metadata and its summary.
type JSONReport struct {
	// Version is the phishscan version that generated this report.
	Version string `json:"version"`

	// Report is the full check report.
	Report *model.CheckReport `json:"report"`

	// Summary is the simple report for quick access.
	Summary *model.SimpleReport `json:"summary"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *model.CheckReport, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Report:  report,
		Summary: simpleOf(report),
	}
}

// FullJSONWriter outputs reports wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the full report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.CheckReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}

// WriteAll outputs every report wrapped with metadata as one JSON array.
func (w *FullJSONWriter) WriteAll(reports []*model.CheckReport) error {
	wrapped := make([]*JSONReport, 0, len(reports))
	for _, r := range reports {
		wrapped = append(wrapped, NewJSONReport(r, w.version))
	}
	_, err := w.writeJSON(wrapped)
	return err
}
