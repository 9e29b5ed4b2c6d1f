package api

import (
	"time"

	"bondscreen/internal/analytics"
	"bondscreen/pkg/contracts/domain"
)

// Response envelope status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope of every successful JSON response
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Count  *int        `json:"count,omitempty"`
}

// Success wraps data in the standard envelope
func Success(data interface{}) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// SuccessWithCount wraps a collection and its length
func SuccessWithCount(data interface{}, count int) Response {
	return Response{Status: StatusSuccess, Data: data, Count: &count}
}

// DatasetResponse describes a loaded dataset
type DatasetResponse struct {
	domain.DatasetInfo
	Cached       bool           `json:"cached"`
	WarningCount int            `json:"warning_count"`
	WarningCodes map[string]int `json:"warning_codes,omitempty"`
}

// NewDatasetResponse builds the dataset description, counting warnings by code.
func NewDatasetResponse(ds *domain.Dataset, cached bool) DatasetResponse {
	resp := DatasetResponse{
		DatasetInfo:  ds.Info(),
		Cached:       cached,
		WarningCount: len(ds.Warnings),
	}
	if len(ds.Warnings) > 0 {
		resp.WarningCodes = make(map[string]int)
		for _, w := range ds.Warnings {
			resp.WarningCodes[w.Code]++
		}
	}
	return resp
}

// FilterResponse is the result of a screening run
type FilterResponse struct {
	DatasetID string                     `json:"dataset_id"`
	Total     int                        `json:"total"`
	Matched   int                        `json:"matched"`
	Records   []domain.BondRecord        `json:"records,omitempty"`
	Summary   analytics.Summary          `json:"summary"`
	Warning   *domain.EmptyResultWarning `json:"warning,omitempty"`
}

// SummaryResponse carries the scalar summary and any requested groupings
type SummaryResponse struct {
	DatasetID string                       `json:"dataset_id"`
	Total     int                          `json:"total"`
	Summary   analytics.Summary            `json:"summary"`
	Groups    map[string][]analytics.Group `json:"groups,omitempty"`
	Warning   *domain.EmptyResultWarning   `json:"warning,omitempty"`
}

// GroupsResponse is a single-dimension value count
type GroupsResponse struct {
	DatasetID string            `json:"dataset_id"`
	Dimension string            `json:"dimension"`
	Groups    []analytics.Group `json:"groups"`
}

// BondDetailsResponse lists every row carrying the requested ISIN
type BondDetailsResponse struct {
	DatasetID string                 `json:"dataset_id"`
	ISIN      string                 `json:"isin"`
	Bonds     []analytics.BondDetail `json:"bonds"`
}

// ExportResult describes a finished CSV export
type ExportResult struct {
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Rows        int       `json:"rows"`
	Bytes       int64     `json:"bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
