package dataprocessing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscreen/pkg/contracts/domain"
)

var testReference = time.Date(2025, time.April, 9, 0, 0, 0, 0, time.UTC)

func newTestPreparer(policy PercentPolicy) *Preparer {
	return NewPreparer(PreparerOptions{
		Now:           func() time.Time { return testReference },
		PercentPolicy: policy,
		Logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
}

func findRecord(t *testing.T, ds *domain.Dataset, isin string) domain.BondRecord {
	t.Helper()
	for _, r := range ds.Records {
		if r.ISIN == isin {
			return r
		}
	}
	t.Fatalf("record %s not found", isin)
	return domain.BondRecord{}
}

func TestPreparer_Sample(t *testing.T) {
	ds, err := newTestPreparer("").Prepare(context.Background(), SampleTable())
	require.NoError(t, err)

	assert.Equal(t, SampleTable().Fingerprint(), ds.ID)
	assert.Equal(t, SampleSource, ds.Source)
	assert.Equal(t, testReference, ds.ReferenceTime)
	assert.Len(t, ds.Records, len(sampleRows))
	assert.Empty(t, ds.Warnings)

	// input order is preserved
	for i, r := range ds.Records {
		assert.Equal(t, sampleRows[i][0], r.ISIN)
		assert.Equal(t, i+2, r.Row)
	}

	krazy := findRecord(t, ds, "INE07HK07791")
	require.NotNil(t, krazy.Coupon)
	assert.InDelta(t, 0.1095, *krazy.Coupon, 1e-12)
	require.NotNil(t, krazy.RedemptionDate)
	assert.Equal(t, "2026-07-23", krazy.RedemptionDate.Format("2006-01-02"))
	require.NotNil(t, krazy.DaysToMaturity)
	assert.Equal(t, 470, *krazy.DaysToMaturity)
	require.NotNil(t, krazy.YearsToMaturity)
	assert.InDelta(t, 470.0/365, *krazy.YearsToMaturity, 1e-12)
	assert.Equal(t, domain.BondTypeSLIPS, krazy.BondType)
	assert.Equal(t, "A-", krazy.RatingCategory)
	assert.Equal(t, domain.RiskLevelMedium, krazy.RiskLevel)
	assert.Equal(t, domain.IndustryOther, krazy.Industry)
	assert.Equal(t, domain.SecurityTypeSecured, krazy.SecuredFlag)
	assert.Nil(t, krazy.CallPutDate)
	assert.Equal(t, "-", krazy.CallPutRaw)
	require.NotNil(t, krazy.EstimatedRealYield)
	assert.InDelta(t, 0.104, *krazy.EstimatedRealYield, 1e-12)
	require.NotNil(t, krazy.TotalValue)
	assert.InDelta(t, 700000*(1+0.1095*470.0/365), *krazy.TotalValue, 1e-6)

	zero := findRecord(t, ds, "INE219O07362")
	assert.Equal(t, domain.BondTypeSLIPS, zero.BondType)
	assert.Equal(t, 0.0, *zero.Coupon)
	assert.Equal(t, domain.IndustryInfrastructure, zero.Industry)
	assert.Equal(t, domain.RiskLevelVeryHigh, zero.RiskLevel)

	ap := findRecord(t, ds, "INE01E708024")
	assert.Equal(t, domain.SecurityTypeUnsecured, ap.SecuredFlag)
	assert.Equal(t, "BB+", ap.RatingCategory)
	assert.Equal(t, domain.RiskLevelHigh, ap.RiskLevel)
}

func TestPreparer_MaturedBondsAreKept(t *testing.T) {
	p := NewPreparer(PreparerOptions{
		Now:    func() time.Time { return time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC) },
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})

	ds, err := p.Prepare(context.Background(), SampleTable())
	require.NoError(t, err)
	assert.Len(t, ds.Records, len(sampleRows))

	ap := findRecord(t, ds, "INE01E708024")
	require.NotNil(t, ap.DaysToMaturity)
	assert.Less(t, *ap.DaysToMaturity, 0)
	assert.Less(t, *ap.YearsToMaturity, 0.0)
}

func TestPreparer_InflationDeduction(t *testing.T) {
	tests := []struct {
		name      string
		deduction *float64
		want      float64
	}{
		{name: "default", deduction: nil, want: DefaultInflationDeduction},
		{name: "configured", deduction: domain.Float(0.05), want: 0.05},
		{name: "explicit zero", deduction: domain.Float(0), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPreparer(PreparerOptions{
				Now:                func() time.Time { return testReference },
				InflationDeduction: tt.deduction,
				Logger:             slog.New(slog.NewJSONHandler(io.Discard, nil)),
			})

			ds, err := p.Prepare(context.Background(), SampleTable())
			require.NoError(t, err)

			for _, r := range ds.Records {
				if r.OfferYield == nil {
					continue
				}
				require.NotNil(t, r.EstimatedRealYield)
				assert.InDelta(t, *r.OfferYield-tt.want, *r.EstimatedRealYield, 1e-12)
			}
		})
	}
}

func TestPreparer_SingleReferenceInstant(t *testing.T) {
	calls := 0
	p := NewPreparer(PreparerOptions{
		Now: func() time.Time {
			calls++
			return testReference.Add(time.Duration(calls) * 24 * time.Hour)
		},
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})

	ds, err := p.Prepare(context.Background(), SampleTable())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	for _, r := range ds.Records {
		require.NotNil(t, r.RedemptionDate)
		want := float64(DaysBetween(ds.ReferenceTime, *r.RedemptionDate)) / 365
		assert.Equal(t, want, *r.YearsToMaturity)
	}
}

func TestPreparer_MissingOfferYield(t *testing.T) {
	table := SampleTable()
	drop := -1
	for i, h := range table.Headers {
		if h == ColOfferYield {
			drop = i
		}
	}
	require.GreaterOrEqual(t, drop, 0)
	table.Headers = append(table.Headers[:drop:drop], table.Headers[drop+1:]...)

	ds, err := newTestPreparer("").Prepare(context.Background(), table)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{ColOfferYield}, schemaErr.Missing)

	require.NotNil(t, ds)
	assert.NotNil(t, ds.Records)
	assert.Empty(t, ds.Records)
	assert.Empty(t, ds.Warnings)
}

func TestPreparer_FarFutureRedemption(t *testing.T) {
	table := RawTable{
		Source:  "test",
		Headers: RequiredColumns,
		Rows: [][]string{
			{"INE000000001", "GOVERNMENT OF INDIA", "0.07", "9999-12-31", "100", "Secured", "G-Sec", "1", "100", "0.07", "Sovereign"},
			{"INE000000002", "GOVERNMENT OF INDIA", "0.07", "31-12-99999", "100", "Secured", "G-Sec", "1", "100", "0.07", "Sovereign"},
			{"INE000000003", "GOVERNMENT OF INDIA", "0.07", "20260723", "100", "Secured", "G-Sec", "1", "100", "0.07", "Sovereign"},
		},
	}

	ds, err := newTestPreparer("").Prepare(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)

	first := ds.Records[0]
	require.NotNil(t, first.RedemptionDate)
	assert.Equal(t, MaxDate, *first.RedemptionDate)
	require.NotNil(t, first.YearsToMaturity)
	assert.False(t, math.IsInf(*first.YearsToMaturity, 0))
	assert.Greater(t, *first.YearsToMaturity, 7000.0)
	assert.Equal(t, domain.IndustryGovernment, first.Industry)
	assert.Equal(t, domain.RiskLevelUnknown, first.RiskLevel)

	// a five digit year cannot be parsed as either layout
	assert.Nil(t, ds.Records[1].RedemptionDate)
	assert.Nil(t, ds.Records[1].YearsToMaturity)

	// separator-free digits beyond the last Excel serial are not a date
	assert.Nil(t, ds.Records[2].RedemptionDate)
	assert.Nil(t, ds.Records[2].YearsToMaturity)
	assert.Nil(t, ds.Records[2].DaysToMaturity)

	require.Len(t, ds.Warnings, 2)
	for _, w := range ds.Warnings {
		assert.Equal(t, domain.WarningUnparseableDate, w.Code)
	}
}

func TestPreparer_DataQuality(t *testing.T) {
	headers := append(append([]string{}, RequiredColumns...), ColCallPutDate)
	table := RawTable{
		Source:  "test",
		Headers: headers,
		Rows: [][]string{
			{"INE1", "ACME FINANCE", "10.65%", "soon", "1,000", "Secured", "NCD", "x", "1000", "0.12", "CARE A", "15-01-2026"},
			{"INE2", "ACME FINANCE", "0.1", "2026-01-15", "1000", "Maybe", "NCD", "1", "1000", "n/a", "CARE A", "later"},
			{"INE3", "ACME FINANCE"},
		},
	}

	t.Run("coerce percent", func(t *testing.T) {
		ds, err := newTestPreparer(PercentCoerce).Prepare(context.Background(), table)
		require.NoError(t, err)
		require.Len(t, ds.Records, 3)

		r := ds.Records[0]
		require.NotNil(t, r.Coupon)
		assert.InDelta(t, 0.1065, *r.Coupon, 1e-12)
		assert.Nil(t, r.RedemptionDate)
		assert.Nil(t, r.YearsToMaturity)
		assert.Nil(t, r.DaysToMaturity)
		assert.Nil(t, r.TotalValue)
		assert.Nil(t, r.TotalQty)
		assert.Equal(t, 1000.0, *r.FaceValue)
		require.NotNil(t, r.CallPutDate)
		assert.Equal(t, "2026-01-15", r.CallPutDate.Format("2006-01-02"))

		r2 := ds.Records[1]
		assert.Nil(t, r2.OfferYield)
		assert.Nil(t, r2.EstimatedRealYield)
		assert.Nil(t, r2.CallPutDate)
		assert.Equal(t, domain.SecurityType("Maybe"), r2.SecuredFlag)

		// a short row keeps every field unknown but is not dropped
		r3 := ds.Records[2]
		assert.Equal(t, "INE3", r3.ISIN)
		assert.Nil(t, r3.Coupon)
		assert.Equal(t, domain.BondTypeSLIPS, r3.BondType)
		assert.Equal(t, domain.RiskLevelUnknown, r3.RiskLevel)

		codes := map[string]string{}
		for _, w := range ds.Warnings {
			codes[w.ISIN+"/"+w.Field] = w.Code
		}
		assert.Equal(t, map[string]string{
			"INE1/" + ColCoupon:         domain.WarningPercentCoerced,
			"INE1/" + ColRedemptionDate: domain.WarningUnparseableDate,
			"INE1/" + ColTotalQty:       domain.WarningNonNumeric,
			"INE2/" + ColSecuredFlag:    domain.WarningUnknownValue,
			"INE2/" + ColOfferYield:     domain.WarningNonNumeric,
			"INE2/" + ColCallPutDate:    domain.WarningUnparseableDate,
		}, codes)
	})

	t.Run("reject percent", func(t *testing.T) {
		ds, err := newTestPreparer(PercentReject).Prepare(context.Background(), table)
		require.NoError(t, err)
		assert.Nil(t, ds.Records[0].Coupon)

		var rejected int
		for _, w := range ds.Warnings {
			if w.Code == domain.WarningPercentRejected {
				rejected++
				assert.Equal(t, "10.65%", w.Value)
			}
		}
		assert.Equal(t, 1, rejected)
	})
}

func TestPreparer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPreparer("").Prepare(ctx, SampleTable())
	assert.ErrorIs(t, err, context.Canceled)
}
