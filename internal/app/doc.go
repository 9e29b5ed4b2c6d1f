// Package app wires the bond screener together and manages its lifecycle.
//
// Initialization runs in a fixed order: configuration, logging,
// OpenTelemetry, the dataset cache and services, then the chi router and
// HTTP server. Errors are returned to the caller; the package never calls
// os.Exit.
//
// Typical use from main:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests, stops
// the cache sweeper and flushes telemetry.
package app
