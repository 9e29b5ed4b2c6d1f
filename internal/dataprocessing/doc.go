// Package dataprocessing prepares bond datasets.
//
// A load runs in three steps:
//
//  1. Parse: ParseWorkbook reads the "Sheet1" worksheet of an xlsx upload,
//     ParseCSV reads exported or hand-written CSV, SampleTable returns the
//     built-in listing. All three produce a RawTable.
//  2. Validate: ValidateSchema rejects tables missing a required column
//     with a *SchemaError. Header matching is exact and case-sensitive.
//  3. Prepare: Preparer.Prepare normalizes each row into a domain.BondRecord
//     and derives maturity, bond type, rating category, risk level, industry,
//     real yield and total value against one reference instant.
//
// Row-level problems never fail a load. The offending field is left nil and a
// domain.DataQualityWarning is attached to the dataset.
//
//	table, err := dataprocessing.ParseWorkbook(file, dataprocessing.DefaultSheetName)
//	if err != nil {
//	    return err
//	}
//	ds, err := dataprocessing.NewPreparer(dataprocessing.PreparerOptions{}).Prepare(ctx, table)
package dataprocessing
