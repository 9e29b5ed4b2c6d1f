package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscreen/internal/dataprocessing"
	"bondscreen/internal/filtering"
	"bondscreen/pkg/contracts/domain"
)

var testReference = time.Date(2025, time.April, 9, 0, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func prepare(t *testing.T, table dataprocessing.RawTable) *domain.Dataset {
	t.Helper()
	p := dataprocessing.NewPreparer(dataprocessing.PreparerOptions{
		Now:    func() time.Time { return testReference },
		Logger: testLogger(),
	})
	ds, err := p.Prepare(context.Background(), table)
	require.NoError(t, err)
	return ds
}

func TestBondCSVWriter_RoundTrip(t *testing.T) {
	ds := prepare(t, dataprocessing.SampleTable())
	view := filtering.Apply(ds, filtering.DefaultCriteria(ds))
	require.NotEmpty(t, view.Records)

	var buf bytes.Buffer
	w := NewBondCSVWriter(testLogger())
	require.NoError(t, w.Write(&buf, view.Records, WriteOptions{}))

	table, err := dataprocessing.ParseCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultColumns(), table.Headers)

	again := prepare(t, table)
	require.Len(t, again.Records, len(view.Records))
	assert.Empty(t, again.Warnings)

	for i := range view.Records {
		for _, col := range dataprocessing.SourceColumns {
			assert.Equal(t, Cell(view.Records[i], col), Cell(again.Records[i], col), "row %d column %s", i, col)
		}
		assert.Equal(t, view.Records[i].BondType, again.Records[i].BondType)
		assert.InDelta(t, *view.Records[i].YearsToMaturity, *again.Records[i].YearsToMaturity, 1e-9)
	}
}

func TestBondCSVWriter_Write(t *testing.T) {
	records := []domain.BondRecord{
		{
			ISIN:           "INE000000001",
			IssuerName:     "ACME, \"THE\" FINANCE",
			Coupon:         domain.Float(0.1095),
			RedemptionDate: domain.Date(2026, time.July, 23),
			CallPutRaw:     "-",
			BondType:       domain.BondTypeSLIPS,
			DaysToMaturity: domain.Int(470),
		},
		{ISIN: "INE000000002", CallPutDate: domain.Date(2025, time.December, 1), CallPutRaw: "01-12-2025"},
	}

	tests := []struct {
		name    string
		options WriteOptions
		want    string
	}{
		{
			name: "selected columns",
			options: WriteOptions{Columns: []string{
				dataprocessing.ColISIN, dataprocessing.ColIssuerName, dataprocessing.ColCoupon,
				dataprocessing.ColRedemptionDate, dataprocessing.ColCallPutDate, dataprocessing.ColDaysToMaturity,
			}},
			want: "ISIN,Issuer Name,Coupon,Redemption Date,Call/Put Date,Days to Maturity\n" +
				"INE000000001,\"ACME, \"\"THE\"\" FINANCE\",0.1095,2026-07-23,-,470\n" +
				"INE000000002,,,,2025-12-01,\n",
		},
		{
			name:    "bom prefix",
			options: WriteOptions{Columns: []string{dataprocessing.ColISIN, dataprocessing.ColBondType}, BOMPrefix: true},
			want:    "\ufeffISIN,Bond Type\nINE000000001,SLIPS\nINE000000002,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewBondCSVWriter(testLogger()).Write(&buf, records, tt.options)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestBondCSVWriter_EmptyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBondCSVWriter(nil).Write(&buf, nil, WriteOptions{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, DefaultColumns(), rows[0])
}

func TestValidateColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		wantErr string
	}{
		{"defaults", DefaultColumns(), ""},
		{"unknown", []string{"ISIN", "Price"}, "unknown export column"},
		{"case sensitive", []string{"isin"}, "unknown export column"},
		{"duplicate", []string{"ISIN", "ISIN"}, "duplicate export column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumns(tt.columns)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	err := NewBondCSVWriter(nil).Write(io.Discard, nil, WriteOptions{Columns: []string{}})
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestBondCSVWriter_WriteError(t *testing.T) {
	err := NewBondCSVWriter(nil).Write(failingWriter{}, nil, WriteOptions{BOMPrefix: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
