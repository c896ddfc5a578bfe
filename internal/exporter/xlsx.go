package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"surveybench/pkg/contracts/domain"
)

const (
	summarySheet = "Market Data"
	rowsSheet    = "Survey Rows"
)

// WriteXLSX writes the full report workbook: a summary sheet with the filter
// context and aggregated percentile table, and a streamed detail sheet with
// the canonical rows behind the aggregate.
func (e *Exporter) WriteXLSX(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	e.logger.Info("writing xlsx report",
		slog.Int("rows", len(report.Rows)),
		slog.Int("market_row_count", report.Market.RowCount))

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := e.writeSummarySheet(f, report); err != nil {
		return err
	}
	if err := e.writeRowsSheet(f, report.Rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeSummarySheet lays out the filter context block followed by the
// metric-by-percentile table.
func (e *Exporter) writeSummarySheet(f *excelize.File, report Report) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	// Built-in format 4 is #,##0.00.
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	set := func(cell string, value interface{}) error {
		return f.SetCellValue(summarySheet, cell, value)
	}

	if err := set("A1", "Compensation Benchmark Report"); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", bold); err != nil {
		return err
	}
	if err := set("A2", "Generated"); err != nil {
		return err
	}
	if err := set("B2", report.GeneratedAt.Format("2006-01-02 15:04 MST")); err != nil {
		return err
	}

	line := 3
	for _, fl := range filterLines(report.Filters) {
		if err := set(fmt.Sprintf("A%d", line), fl.Label); err != nil {
			return err
		}
		if err := set(fmt.Sprintf("B%d", line), fl.Value); err != nil {
			return err
		}
		line++
	}
	if err := set(fmt.Sprintf("A%d", line), "Matching Rows"); err != nil {
		return err
	}
	if err := set(fmt.Sprintf("B%d", line), report.Market.RowCount); err != nil {
		return err
	}
	line += 2

	headerRow := line
	for i, h := range []string{"Metric", "P25", "P50", "P75", "P90"} {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := set(cell, h); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(5, headerRow)
	if err := f.SetCellStyle(summarySheet, first, last, bold); err != nil {
		return err
	}

	for i, m := range domain.AllMetrics() {
		p := report.Market.Metric(m)
		row := headerRow + 1 + i
		if err := set(fmt.Sprintf("A%d", row), metricLabel(m)); err != nil {
			return err
		}
		for col, v := range []float64{p.P25, p.P50, p.P75, p.P90} {
			cell, err := excelize.CoordinatesToCellName(col+2, row)
			if err != nil {
				return err
			}
			if err := set(cell, v); err != nil {
				return err
			}
		}
		valFirst, _ := excelize.CoordinatesToCellName(2, row)
		valLast, _ := excelize.CoordinatesToCellName(5, row)
		if err := f.SetCellStyle(summarySheet, valFirst, valLast, amount); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "E", 16)
}

// writeRowsSheet streams the canonical rows into the detail sheet.
func (e *Exporter) writeRowsSheet(f *excelize.File, rows []domain.CanonicalRow) error {
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return fmt.Errorf("create rows sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(rowsSheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	headers := rowHeaders()
	headerCells := make([]interface{}, len(headers))
	for i, h := range headers {
		headerCells[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return fmt.Errorf("write rows header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, rowValues(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush rows sheet: %w", err)
	}
	return nil
}
