package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
)

const textWidth = 64

// SimpleWriter renders a check as plain text for the terminal.
type SimpleWriter struct {
	baseWriter
	showEmpty bool
	verbose   bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty prints the signal section even when nothing was found.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose adds the impact and advice of every signal and, for full
// reports, the non-zero feature columns.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter writing to output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders report with its reputation data.
func (w *SimpleWriter) Write(report *model.CheckReport) (int, error) {
	var b strings.Builder
	simple := simpleOf(report)

	w.writeVerdict(&b, simple, report.ClassifierName)
	w.writeSignals(&b, simple)
	if report.Reputation != nil {
		writeReputation(&b, report.Reputation)
	}
	if w.verbose {
		writeFeatureColumns(&b, report.Features)
	}
	b.WriteString(strings.Repeat("=", textWidth) + "\n")

	return io.WriteString(w.output, b.String())
}

// WriteSimple renders only the verdict and the signals.
func (w *SimpleWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	var b strings.Builder
	w.writeVerdict(&b, report, "")
	w.writeSignals(&b, report)
	b.WriteString(strings.Repeat("=", textWidth) + "\n")
	return io.WriteString(w.output, b.String())
}

func (w *SimpleWriter) writeVerdict(b *strings.Builder, s *model.SimpleReport, classifierName string) {
	b.WriteString(strings.Repeat("=", textWidth) + "\n")
	b.WriteString("PHISHSCAN REPORT\n")
	b.WriteString(strings.Repeat("=", textWidth) + "\n")

	fmt.Fprintf(b, "%-12s%s\n", "URL", s.URL)
	if !s.DateChecked.IsZero() {
		fmt.Fprintf(b, "%-12s%s\n", "Checked", s.DateChecked.Format(time.DateTime+" MST"))
	}

	verdict := s.Prediction
	if verdict == "" {
		verdict = model.LabelUnknown.String()
	}
	if classifierName != "" {
		fmt.Fprintf(b, "%-12s%s (score %.3f, classifier %s)\n", "Verdict", verdict, s.Score, classifierName)
	} else {
		fmt.Fprintf(b, "%-12s%s (score %.3f)\n", "Verdict", verdict, s.Score)
	}

	status := "complete"
	switch {
	case s.TimedOut:
		status = "timed out, partial result"
	case s.Error != "":
		status = "error: " + s.Error
	}
	fmt.Fprintf(b, "%-12s%s\n", "Status", status)
}

// writeSignals prints one line per finding, most severe first.
func (w *SimpleWriter) writeSignals(b *strings.Builder, s *model.SimpleReport) {
	if !s.HasFindings() && !w.showEmpty {
		return
	}

	fmt.Fprintf(b, "\nSignals  %d critical, %d high, %d medium, %d low, %d info\n",
		s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount, s.InfoCount)
	if !s.HasFindings() {
		b.WriteString("  none\n")
		return
	}

	findings := slices.Clone(s.Findings)
	slices.SortStableFunc(findings, func(x, y model.Finding) int {
		return int(y.Severity) - int(x.Severity)
	})
	for _, f := range findings {
		title := f.Title
		if f.Value != "" {
			title += " (" + f.Value + ")"
		}
		fmt.Fprintf(b, "  %-3s %-9s %s\n", severityMark(f.Severity), f.Severity, title)
		if w.verbose {
			if f.Impact != "" {
				fmt.Fprintf(b, "      impact: %s\n", f.Impact)
			}
			if f.Recommendation != "" {
				fmt.Fprintf(b, "      advice: %s\n", f.Recommendation)
			}
		}
	}
}

func severityMark(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	default:
		return "i"
	}
}

func writeReputation(b *strings.Builder, rep *model.ReputationReport) {
	b.WriteString("\nReputation\n")
	row := func(name, value string) {
		fmt.Fprintf(b, "  %-16s%s\n", name, value)
	}

	row("Host", rep.Host)
	if rep.RegistrableDomain != "" {
		row("Domain", rep.RegistrableDomain)
	}

	switch {
	case !rep.WhoisChecked:
		row("Domain age", "not checked")
	case rep.Unregistered:
		row("Domain age", "not registered")
	case rep.DomainAgeDays < 0:
		row("Domain age", "unknown")
	default:
		row("Domain age", fmt.Sprintf("%d days", rep.DomainAgeDays))
	}
	if rep.Registrar != "" {
		row("Registrar", rep.Registrar)
	}

	switch {
	case !rep.DNSChecked:
		row("DNS", "not checked")
	case !rep.HasDNSRecord:
		row("DNS", "no A/AAAA record")
	default:
		row("DNS", strings.Join(rep.Addresses, ", "))
	}

	switch {
	case !rep.BlocklistChecked:
		row("Blocklist", "not checked")
	case rep.Blocklisted:
		row("Blocklist", "LISTED")
	default:
		row("Blocklist", "not listed")
	}

	sources := make([]string, 0, len(rep.Errors))
	for src := range rep.Errors {
		sources = append(sources, src)
	}
	slices.Sort(sources)
	for _, src := range sources {
		row("Failed "+src, rep.Errors[src])
	}
}

// writeFeatureColumns prints the non-zero columns in schema order.
func writeFeatureColumns(b *strings.Builder, v feature.Vector) {
	b.WriteString("\nFeatures (non-zero)\n")
	found := false
	for i := range feature.NumFeatures {
		f := feature.Feature(i)
		if n := v.Get(f); n != 0 {
			fmt.Fprintf(b, "  %-34s %d\n", f, n)
			found = true
		}
	}
	if !found {
		b.WriteString("  none\n")
	}
}
