// Package exporter writes filtered bond views as CSV.
//
// Output is UTF-8, comma delimited, with a single header row using the same
// column names the loader accepts, so an export can be uploaded again. Dates
// are written as YYYY-MM-DD and numbers in their shortest exact form.
// An optional BOM helps Excel detect the encoding.
//
// Example usage:
//
//	w := exporter.NewBondCSVWriter(logger)
//	err := w.Write(resp, view.Records, exporter.WriteOptions{BOMPrefix: true})
package exporter
