package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bondscreen/internal/dataprocessing"
	"bondscreen/pkg/contracts/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    *float64
		expected string
	}{
		{"unknown", nil, ""},
		{"zero value", domain.Float(0), "0"},
		{"integer", domain.Float(100000), "100000"},
		{"fraction", domain.Float(0.1095), "0.1095"},
		{"long fraction", domain.Float(0.107809988), "0.107809988"},
		{"negative", domain.Float(-0.25), "-0.25"},
		{"large", domain.Float(5500000), "5500000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestCell(t *testing.T) {
	r := domain.BondRecord{
		ISIN:               "INE07HK07791",
		SecuredFlag:        domain.SecurityTypeSecured,
		RedemptionDate:     domain.Date(2026, time.July, 23),
		CallPutRaw:         "-",
		DaysToMaturity:     domain.Int(-3),
		RiskLevel:          domain.RiskLevelMedium,
		Industry:           domain.IndustryOther,
		RatingCategory:     "A-",
		EstimatedRealYield: domain.Float(0.104),
	}

	tests := []struct {
		column string
		want   string
	}{
		{dataprocessing.ColISIN, "INE07HK07791"},
		{dataprocessing.ColSecuredFlag, "Secured"},
		{dataprocessing.ColRedemptionDate, "2026-07-23"},
		{dataprocessing.ColCallPutDate, "-"},
		{dataprocessing.ColCoupon, ""},
		{dataprocessing.ColDaysToMaturity, "-3"},
		{dataprocessing.ColYearsToMaturity, ""},
		{dataprocessing.ColRiskLevel, "Medium"},
		{dataprocessing.ColIndustry, "Other"},
		{dataprocessing.ColRatingCategory, "A-"},
		{dataprocessing.ColEstimatedRealYield, "0.104"},
		{"Not A Column", ""},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, Cell(r, tt.column))
		})
	}
}
