package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
)

// CSVWriter writes one row per check: the URL, every feature column in
// published order and, unless features-only, the verdict.
type CSVWriter struct {
	baseWriter

	featuresOnly bool
	noHeader     bool
}

// CSVWriterOption configures a CSVWriter.
type CSVWriterOption func(*CSVWriter)

// WithFeaturesOnly omits the verdict columns.
func WithFeaturesOnly() CSVWriterOption {
	return func(w *CSVWriter) {
		w.featuresOnly = true
	}
}

// WithoutHeader omits the header row.
func WithoutHeader() CSVWriterOption {
	return func(w *CSVWriter) {
		w.noHeader = true
	}
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer, opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Header returns the column names written by w.
func (w *CSVWriter) Header() []string {
	header := make([]string, 0, feature.NumFeatures+4)
	header = append(header, "url")
	header = append(header, feature.Schema()...)
	if !w.featuresOnly {
		header = append(header, "prediction", "score", "classifier")
	}
	return header
}

// WriteAll writes the header and one row per report.
func (w *CSVWriter) WriteAll(reports []*model.CheckReport) error {
	cw := csv.NewWriter(w.output)

	if !w.noHeader {
		if err := cw.Write(w.Header()); err != nil {
			return err
		}
	}
	for _, r := range reports {
		if err := cw.Write(w.row(r)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (w *CSVWriter) row(r *model.CheckReport) []string {
	row := make([]string, 0, feature.NumFeatures+4)
	row = append(row, r.URL)
	row = append(row, r.Features.Row()...)
	if !w.featuresOnly {
		row = append(row,
			strconv.Itoa(int(r.Label)),
			strconv.FormatFloat(r.Score, 'f', -1, 64),
			r.ClassifierName,
		)
	}
	return row
}
