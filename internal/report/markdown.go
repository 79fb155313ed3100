package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/phishscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation
// and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format, including the reputation
// section when reputation data is present.
func (w *MarkdownWriter) Write(report *model.CheckReport) (int, error) {
	return w.render(simpleOf(report), report.Reputation)
}

// WriteSimple outputs the simple report in Markdown format.
func (w *MarkdownWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	return w.render(report, nil)
}

func (w *MarkdownWriter) render(report *model.SimpleReport, rep *model.ReputationReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	if rep != nil {
		w.writeReputation(md, rep)
	}
	w.writeFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteAll outputs a batch summary: one table row per URL and a verdict chart.
func (w *MarkdownWriter) WriteAll(reports []*model.CheckReport) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("phishscan Batch Report")
	md.PlainText("")

	var phishing, benign, unknown int
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		switch r.Label {
		case model.LabelPhishing:
			phishing++
		case model.LabelBenign:
			benign++
		default:
			unknown++
		}
		simple := simpleOf(r)
		rows = append(rows, []string{
			"`" + truncateString(r.URL, 80) + "`",
			verdictText(r.Label),
			strconv.FormatFloat(r.Score, 'f', 3, 64),
			strconv.Itoa(simple.TotalFindings()),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Verdict", "Score", "Findings"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(reports) > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Verdicts"),
			piechart.WithShowData(true),
		)
		if phishing > 0 {
			chart.LabelAndIntValue("Phishing", uint64(phishing))
		}
		if benign > 0 {
			chart.LabelAndIntValue("Benign", uint64(benign))
		}
		if unknown > 0 {
			chart.LabelAndIntValue("Unknown", uint64(unknown))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	if phishing > 0 {
		md.Warningf("%d of %d URL(s) classified as phishing.", phishing, len(reports))
	} else {
		md.Tip("No URL was classified as phishing.")
	}
	md.PlainText("")
	w.writeFooter(md)

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SimpleReport) {
	md.H1("phishscan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + report.URL + "`"},
			{"Check Date", report.DateChecked.Format("2006-01-02 15:04:05 MST")},
			{"Verdict", verdictTextFromString(report.Prediction)},
			{"Score", strconv.FormatFloat(report.Score, 'f', 3, 64)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) getStatusText(report *model.SimpleReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CriticalCount)},
			{"🟠 High", strconv.Itoa(report.HighCount)},
			{"🟡 Medium", strconv.Itoa(report.MediumCount)},
			{"🔵 Low", strconv.Itoa(report.LowCount)},
			{"⚪ Info", strconv.Itoa(report.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	if report.HasFindings() {
		w.writePieChart(md, report)
	}
	w.writeAlert(md, report)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.SimpleReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	if report.CriticalCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(report.CriticalCount))
	}
	if report.HighCount > 0 {
		chart.LabelAndIntValue("High", uint64(report.HighCount))
	}
	if report.MediumCount > 0 {
		chart.LabelAndIntValue("Medium", uint64(report.MediumCount))
	}
	if report.LowCount > 0 {
		chart.LabelAndIntValue("Low", uint64(report.LowCount))
	}
	if report.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(report.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SimpleReport) {
	switch {
	case report.Prediction == model.LabelPhishing.String():
		md.Cautionf("This URL was classified as phishing (score %.3f).", report.Score)
	case report.CriticalCount > 0 || report.HighCount > 0:
		md.Warningf(
			"%d critical/high indicator(s) found although the classifier did not flag the URL.",
			report.CriticalCount+report.HighCount,
		)
	case report.MediumCount > 0:
		md.Importantf("%d medium severity indicator(s) found.", report.MediumCount)
	case report.TotalFindings() > 0:
		md.Note("Only low severity and informational indicators found.")
	default:
		md.Tip("No phishing indicators found.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeReputation(md *markdown.Markdown, rep *model.ReputationReport) {
	md.H2("Reputation")
	md.PlainText("")

	age := "unknown"
	switch {
	case rep.Unregistered:
		age = "not registered"
	case rep.DomainAgeDays >= 0:
		age = strconv.Itoa(rep.DomainAgeDays) + " days"
	}
	rows := [][]string{
		{"Host", "`" + rep.Host + "`"},
		{"Registrable Domain", orDash(rep.RegistrableDomain)},
		{"Registrar", orDash(rep.Registrar)},
		{"Domain Age", age},
		{"DNS Record", checkedText(rep.DNSChecked, rep.HasDNSRecord)},
		{"Blocklisted", checkedText(rep.BlocklistChecked, rep.Blocklisted)},
	}
	if len(rep.Addresses) > 0 {
		rows = append(rows, []string{"Addresses", strings.Join(rep.Addresses, ", ")})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(rep.Errors) > 0 {
		items := make([]string, 0, len(rep.Errors))
		for _, source := range []string{"whois", "dns", "blocklist"} {
			if msg, ok := rep.Errors[source]; ok {
				items = append(items, fmt.Sprintf("%s: %s", source, msg))
			}
		}
		md.Details("Lookup errors", strings.Join(items, "\n"))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Findings")
	md.PlainText("")

	if !report.HasFindings() {
		md.PlainText("No phishing indicators found.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		findings := report.GetFindingsBySeverity(sev.level)
		if len(findings) == 0 {
			continue
		}
		md.PlainText(sev.header)
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{
			f.Title,
			truncateString(orDash(f.Value), 50),
			truncateString(orDash(f.Recommendation), 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Value", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range findings {
		if f.Impact != "" {
			md.Details(f.Title, f.Impact)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [phishscan](https://github.com/nao1215/phishscan)*")
}

func verdictText(l model.Label) string {
	return verdictTextFromString(l.String())
}

func verdictTextFromString(s string) string {
	switch s {
	case model.LabelPhishing.String():
		return "🚨 " + s
	case model.LabelBenign.String():
		return "✅ " + s
	default:
		return "❔ " + s
	}
}

func checkedText(checked, value bool) string {
	if !checked {
		return "not checked"
	}
	if value {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
