// Package services implements the business logic layer of the bond screener.
// It sits between the HTTP handlers and the pipeline packages so that the
// load, screen, aggregate and export rules live in one testable place.
//
// # Services
//
//	- BondService: loads the built-in listing or an uploaded workbook,
//	  memoizes prepared datasets and answers filter, summary, grouping,
//	  export and bond detail queries against them
//	- HealthService: health, readiness, liveness and version reports
//
// # Error Handling
//
// Services return sentinel errors (ErrDatasetNotFound, ErrBondNotFound,
// ErrUnsupportedFormat, ErrEmptyUpload) or typed application errors from
// internal/errors. Schema problems are reported as SCHEMA application errors
// carrying the missing column names.
//
// # Testing
//
// Services are tested against the built-in listing with a pinned clock:
//
//	store := cache.New(cfg.CacheTTL, cfg.CacheMaxEntries)
//	svc := NewBondService(cfg, store, logger, WithClock(testutil.FixedClock))
//	ds, _, err := svc.LoadSample(ctx)
package services
