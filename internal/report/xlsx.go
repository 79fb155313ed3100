package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
)

const (
	// VerdictSheet holds one row per checked URL.
	VerdictSheet = "verdicts"

	// FindingSheet holds one row per finding.
	FindingSheet = "findings"
)

// XLSXWriter writes a workbook with a verdict sheet and a finding sheet.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// WriteAll builds the workbook for reports and writes it out.
func (w *XLSXWriter) WriteAll(reports []*model.CheckReport) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", VerdictSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(FindingSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := w.writeVerdicts(f, reports, bold); err != nil {
		return err
	}
	if err := w.writeFindings(f, reports, bold); err != nil {
		return err
	}

	if err := f.Write(w.output); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) writeVerdicts(f *excelize.File, reports []*model.CheckReport, headerStyle int) error {
	header := []any{"url", "prediction", "score", "classifier"}
	for _, name := range feature.Schema() {
		header = append(header, name)
	}
	if err := writeHeaderRow(f, VerdictSheet, header, headerStyle); err != nil {
		return err
	}

	for i, r := range reports {
		row := []any{r.URL, int(r.Label), r.Score, r.ClassifierName}
		for _, v := range r.Features.Values() {
			row = append(row, v)
		}
		if err := setRow(f, VerdictSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(VerdictSheet, "A", "A", 60); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func (w *XLSXWriter) writeFindings(f *excelize.File, reports []*model.CheckReport, headerStyle int) error {
	header := []any{"url", "severity", "type", "title", "value"}
	if err := writeHeaderRow(f, FindingSheet, header, headerStyle); err != nil {
		return err
	}

	rowNum := 2
	for _, r := range reports {
		for _, finding := range simpleOf(r).Findings {
			row := []any{r.URL, finding.SeverityText, finding.Type, finding.Title, finding.Value}
			if err := setRow(f, FindingSheet, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, header []any, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
