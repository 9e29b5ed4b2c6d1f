// Package shared holds helpers used across the bond screener packages that
// belong to no single layer.
//
// The testutil subpackage provides a capturing slog handler and bond dataset
// fixtures pinned to a fixed reference date, so tests in services, transport
// and app packages see the same derived values.
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    ds := testutil.SampleDataset(t)
//	    // ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
