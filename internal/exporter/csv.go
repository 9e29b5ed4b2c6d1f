package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"bondscreen/internal/dataprocessing"
	"bondscreen/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ContentType of an exported file
const ContentType = "text/csv; charset=utf-8"

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Columns   []string // nil means DefaultColumns
	BOMPrefix bool     // Add UTF-8 BOM for Excel compatibility
}

// BondCSVWriter exports bond records as comma separated UTF-8 text
type BondCSVWriter struct {
	logger *slog.Logger
}

// NewBondCSVWriter creates a new CSV writer instance
func NewBondCSVWriter(logger *slog.Logger) *BondCSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BondCSVWriter{logger: logger.With(slog.String("component", "csv_exporter"))}
}

// DefaultColumns returns every source column followed by the derived ones.
func DefaultColumns() []string {
	return dataprocessing.AllColumns()
}

// ValidateColumns rejects empty, unknown or repeated column names.
func ValidateColumns(columns []string) error {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if !dataprocessing.IsKnownColumn(c) {
			return fmt.Errorf("unknown export column %q", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate export column %q", c)
		}
		seen[c] = true
	}
	return nil
}

// Write writes one header row followed by one line per record.
func (w *BondCSVWriter) Write(out io.Writer, records []domain.BondRecord, options WriteOptions) error {
	columns := options.Columns
	if columns == nil {
		columns = DefaultColumns()
	}
	if len(columns) == 0 {
		return fmt.Errorf("no export columns selected")
	}
	if err := ValidateColumns(columns); err != nil {
		return err
	}

	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	row := make([]string, len(columns))
	for i, r := range records {
		for j, c := range columns {
			row[j] = Cell(r, c)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	w.logger.Debug("Wrote CSV export",
		slog.Int("record_count", len(records)),
		slog.Int("column_count", len(columns)))
	return nil
}
