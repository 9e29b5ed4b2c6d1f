package dataprocessing

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "bondscreen/internal/errors"
)

// DefaultSheetName is the worksheet an uploaded workbook must contain.
const DefaultSheetName = "Sheet1"

// RawTable is an untyped bond table: one header row and the data rows under it.
type RawTable struct {
	Source  string
	Headers []string
	Rows    [][]string
}

// index maps each header to its first column position.
func (t RawTable) index() map[string]int {
	idx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

// Fingerprint is a content hash of the headers and cells.
// Identical tables share a fingerprint whatever file format they came from.
func (t RawTable) Fingerprint() string {
	h := sha256.New()
	for _, c := range t.Headers {
		h.Write([]byte(c))
		h.Write([]byte{0x1f})
	}
	h.Write([]byte{0x1e})
	for _, row := range t.Rows {
		for _, c := range row {
			h.Write([]byte(c))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// SchemaError reports a structural problem that prevents a load.
type SchemaError struct {
	Sheet   string   `json:"sheet,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Reason  string   `json:"reason"`
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("schema error: %s: %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return "schema error: " + e.Reason
}

// ValidateSchema checks that every required column is present.
func ValidateSchema(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing, Reason: "missing required columns"}
	}
	return nil
}

// ParseWorkbook reads the named sheet of an xlsx workbook. Cells are read raw
// so that date cells arrive as Excel serial numbers.
func ParseWorkbook(r io.Reader, sheet string) (RawTable, error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return RawTable{}, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return RawTable{}, &SchemaError{Sheet: sheet, Reason: fmt.Sprintf("sheet %q not found", sheet)}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return RawTable{}, apperrors.NewParsingError("failed to read sheet rows", err).WithContext("sheet", sheet)
	}

	return tableFromRows("xlsx", rows), nil
}

// ParseCSV reads a comma-delimited table with one header row.
// A leading UTF-8 byte order mark is ignored.
func ParseCSV(r io.Reader) (RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return RawTable{}, apperrors.NewParsingError("failed to read csv", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return RawTable{}, apperrors.NewParsingError("failed to parse csv", err)
	}

	return tableFromRows("csv", rows), nil
}

func tableFromRows(source string, rows [][]string) RawTable {
	t := RawTable{Source: source}
	if len(rows) == 0 {
		return t
	}
	t.Headers = rows[0]
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
