// Package files finds bond listings on disk.
//
// Discovery scans a directory for .xlsx and .csv listings, skipping
// spreadsheet lock files, and picks the most recently modified one:
//
//	latest, err := files.NewDiscovery("").LatestListing("downloads")
//	if err != nil {
//	    return err
//	}
//	ds, _, err := svc.LoadFile(ctx, latest.Path)
package files
