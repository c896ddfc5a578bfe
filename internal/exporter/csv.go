package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"surveybench/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 encoded CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures CSV writing behavior.
type CSVOptions struct {
	BOMPrefix bool // prepend a UTF-8 BOM for Excel compatibility
}

// WriteCSV writes the canonical detail rows as a flat CSV table.
func (e *Exporter) WriteCSV(w io.Writer, rows []domain.CanonicalRow, opts CSVOptions) error {
	e.logger.Info("writing csv export",
		slog.Int("rows", len(rows)),
		slog.Bool("bom", opts.BOMPrefix))

	sw, err := NewStreamWriter(w, rowHeaders(), opts)
	if err != nil {
		return err
	}
	for i, row := range rows {
		if err := sw.WriteRecord(rowStrings(row)); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	return sw.Close()
}

// StreamWriter writes CSV records one at a time, for callers that produce
// rows incrementally rather than holding the full slice.
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and the header row, then returns a
// writer ready for records.
func NewStreamWriter(w io.Writer, headers []string, opts CSVOptions) (*StreamWriter, error) {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("write BOM: %w", err)
		}
	}
	cw := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := cw.Write(headers); err != nil {
			return nil, fmt.Errorf("write headers: %w", err)
		}
	}
	return &StreamWriter{writer: cw}, nil
}

// WriteRecord writes a single record to the stream.
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes any buffered records.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}
