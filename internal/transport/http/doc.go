// Package http implements the HTTP request handlers of the bond screener.
// Handlers are a thin layer over the service package: they parse and
// validate requests, call a service and render the result.
//
// # Routes
//
//	POST /api/datasets/sample           load the built-in listing
//	POST /api/datasets                  upload an .xlsx or .csv file (multipart "file")
//	GET  /api/datasets/{id}             dataset metadata and data quality warnings
//	GET  /api/datasets/{id}/options     control values and default criteria
//	GET  /api/datasets/{id}/groups?by=  value counts over one dimension
//	POST /api/datasets/{id}/filter      filtered rows and their summary
//	POST /api/datasets/{id}/summary     summary and grouped aggregates
//	POST /api/datasets/{id}/export      CSV attachment of the filtered rows
//	GET  /api/datasets/{id}/bonds/{isin} bond detail cards
//
// # Responses
//
// Successful JSON responses use the envelope
//
//	{"status": "success", "data": ..., "count": 9}
//
// Errors follow RFC 7807 Problem Details and are rendered by the shared
// errors.ErrorHandler. A dataset whose required columns are missing yields
// 422 with a missing_columns member:
//
//	{
//	    "type": "/errors/dataset/schema",
//	    "title": "Dataset Schema Error",
//	    "status": 422,
//	    "detail": "schema error: missing required columns: Offer Yield",
//	    "missing_columns": ["Offer Yield"]
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// BondServiceInterface.
package http
