package testutil

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"bondscreen/internal/dataprocessing"
	"bondscreen/pkg/contracts/domain"
)

// Reference is the fixed load instant used by fixtures.
var Reference = time.Date(2025, time.April, 9, 0, 0, 0, 0, time.UTC)

// FixedClock returns Reference on every call.
func FixedClock() time.Time { return Reference }

// DiscardLogger drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Preparer returns a preparer pinned to Reference.
func Preparer() *dataprocessing.Preparer {
	return dataprocessing.NewPreparer(dataprocessing.PreparerOptions{
		Now:    FixedClock,
		Logger: DiscardLogger(),
	})
}

// SampleDataset prepares the built-in listing against Reference.
func SampleDataset(t *testing.T) *domain.Dataset {
	t.Helper()
	ds, err := Preparer().Prepare(context.Background(), dataprocessing.SampleTable())
	if err != nil {
		t.Fatalf("prepare sample: %v", err)
	}
	return ds
}

// WorkbookBytes builds an xlsx file whose sheet holds headers followed by rows.
func WorkbookBytes(t *testing.T, sheet string, headers []string, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}

	all := append([][]string{headers}, rows...)
	for r, row := range all {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// SampleWorkbook is the built-in listing as an xlsx upload.
func SampleWorkbook(t *testing.T) []byte {
	t.Helper()
	table := dataprocessing.SampleTable()
	return WorkbookBytes(t, dataprocessing.DefaultSheetName, table.Headers, table.Rows)
}
