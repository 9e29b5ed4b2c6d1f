// Package api contains API contract definitions for the Bond Screener.
// Version v1 represents the current stable API version.
package api

import (
	"bondscreen/internal/filtering"
)

// Dataset API Requests

// DatasetRequest identifies a loaded dataset by its path parameter
type DatasetRequest struct {
	DatasetID string `json:"dataset_id" param:"id" validate:"required,hexadecimal,len=16"`
}

// UploadRequest describes a multipart dataset upload
type UploadRequest struct {
	FileName string `json:"file_name" validate:"required,filename"`
	Size     int64  `json:"size" validate:"gte=0"`
}

// Screening API Requests

// FilterRequest applies screening criteria to a dataset.
// A missing criteria object matches every row.
type FilterRequest struct {
	Criteria filtering.Criteria `json:"criteria"`
	// IncludeRecords set to false returns only counts and the summary
	IncludeRecords *bool `json:"include_records,omitempty"`
}

// WantRecords reports whether the filtered rows should be returned.
func (r FilterRequest) WantRecords() bool {
	return r.IncludeRecords == nil || *r.IncludeRecords
}

// SummaryRequest aggregates a filtered view, optionally grouped.
type SummaryRequest struct {
	Criteria filtering.Criteria `json:"criteria"`
	GroupBy  []string           `json:"group_by,omitempty" validate:"omitempty,dive,oneof=bond_type credit_rating risk_level industry security_type payment_frequency"`
}

// ExportRequest exports a filtered view as CSV.
// Nil Columns exports every source and derived column.
type ExportRequest struct {
	Criteria filtering.Criteria `json:"criteria"`
	Columns  []string           `json:"columns,omitempty" validate:"omitempty,dive,required"`
	BOM      *bool              `json:"bom,omitempty"`
}
