package domain

import (
	"fmt"
	"time"
)

// Warning codes attached to DataQualityWarning
const (
	WarningUnparseableDate = "unparseable_date"
	WarningDateClamped     = "date_clamped"
	WarningNonNumeric      = "non_numeric"
	WarningPercentCoerced  = "percent_coerced"
	WarningPercentRejected = "percent_rejected"
	WarningUnknownValue    = "unknown_value"
)

// DataQualityWarning describes a row-scoped problem absorbed during preparation.
// The affected row is kept and the offending field is left unknown.
type DataQualityWarning struct {
	Row     int    `json:"row"`
	ISIN    string `json:"isin,omitempty"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w DataQualityWarning) String() string {
	return fmt.Sprintf("row %d (%s) %s=%q: %s", w.Row, w.ISIN, w.Field, w.Value, w.Message)
}

// EmptyResultWarning is reported when a filter combination matches nothing.
type EmptyResultWarning struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
}

// Dataset is an immutable, enriched bond table produced by one load.
// Every derived field was computed against ReferenceTime.
type Dataset struct {
	ID            string               `json:"id"`
	Source        string               `json:"source"`
	ReferenceTime time.Time            `json:"reference_time"`
	Columns       []string             `json:"columns"`
	Records       []BondRecord         `json:"records"`
	Warnings      []DataQualityWarning `json:"warnings"`
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Info returns the dataset metadata without its records.
func (d *Dataset) Info() DatasetInfo {
	return DatasetInfo{
		ID:            d.ID,
		Source:        d.Source,
		ReferenceTime: d.ReferenceTime,
		Rows:          len(d.Records),
		Columns:       d.Columns,
		Warnings:      d.Warnings,
	}
}

// DatasetInfo is the metadata view of a Dataset
type DatasetInfo struct {
	ID            string               `json:"id"`
	Source        string               `json:"source"`
	ReferenceTime time.Time            `json:"reference_time"`
	Rows          int                  `json:"rows"`
	Columns       []string             `json:"columns"`
	Warnings      []DataQualityWarning `json:"warnings"`
}
