package report

import (
	"fmt"
	"io"

	"github.com/nao1215/phishscan/internal/model"
)

// Writer renders one check result.
type Writer interface {
	// Write renders the full report. It returns the number of bytes
	// written.
	Write(report *model.CheckReport) (int, error)

	// WriteSimple renders only the summarized findings.
	WriteSimple(report *model.SimpleReport) (int, error)
}

// TableWriter renders many check results at once.
type TableWriter interface {
	WriteAll(reports []*model.CheckReport) error
}

// Format selects the output of Render.
type Format int

const (
	// FormatText is the terminal report of SimpleWriter.
	FormatText Format = iota
	// FormatJSON is the versioned document of FullJSONWriter.
	FormatJSON
	// FormatMarkdown is the document of MarkdownWriter.
	FormatMarkdown
	// FormatCSV is the feature table of CSVWriter.
	FormatCSV
)

// String returns the format name used in flags and logs.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "markdown"
	case FormatCSV:
		return "csv"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// RenderOptions tune Render.
type RenderOptions struct {
	// Version is embedded in JSON documents.
	Version string
	// Verbose adds impact and advice to text findings.
	Verbose bool
}

// Render writes reports to out in format f. A single report is written
// in its per-URL form; more than one as a batch document, except for
// text, which repeats the per-URL form.
func Render(out io.Writer, f Format, reports []*model.CheckReport, opts RenderOptions) error {
	switch f {
	case FormatJSON:
		w := NewFullJSONWriter(out, opts.Version, WithPrettyPrint())
		if len(reports) == 1 {
			_, err := w.Write(reports[0])
			return err
		}
		return w.WriteAll(reports)
	case FormatMarkdown:
		w := NewMarkdownWriter(out)
		if len(reports) == 1 {
			_, err := w.Write(reports[0])
			return err
		}
		return w.WriteAll(reports)
	case FormatCSV:
		return NewCSVWriter(out).WriteAll(reports)
	case FormatText:
		w := NewSimpleWriter(out, WithVerbose(opts.Verbose))
		for _, r := range reports {
			if _, err := w.Write(r); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %s", f)
	}
}

// baseWriter holds the destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

func simpleOf(report *model.CheckReport) *model.SimpleReport {
	return model.NewSimpleReport(report)
}
