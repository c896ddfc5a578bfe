// Package exporter provides downloadable benchmark report generation.
//
// Two formats are supported:
//
// XLSX: a workbook with a "Market Data" summary sheet (filter context plus
// the aggregated percentile table) and a "Survey Rows" detail sheet holding
// every canonical row behind the aggregate. Row sheets are written through
// the excelize stream writer so large datasets do not balloon memory.
//
// CSV: the canonical detail rows as a flat table, with an optional UTF-8 BOM
// so Excel recognizes the encoding.
//
// Writers target io.Writer so handlers can stream straight to the HTTP
// response without touching disk.
//
// Example usage:
//
//	exp := exporter.New(logger)
//
//	// Full workbook report
//	err := exp.WriteXLSX(w, exporter.Report{
//		Filters:     filters,
//		Market:      market,
//		Rows:        rows,
//		GeneratedAt: time.Now(),
//	})
//
//	// Flat CSV of the detail rows
//	err = exp.WriteCSV(w, rows, exporter.CSVOptions{BOMPrefix: true})
package exporter
