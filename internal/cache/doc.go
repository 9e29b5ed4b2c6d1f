// Package cache keeps prepared bond datasets in memory so repeated filter
// requests do not parse and derive the same input again.
//
// Keys are content fingerprints, so the same listing uploaded twice, or as
// xlsx and as csv, resolves to one entry. Entries expire after a TTL and the
// oldest entry is evicted when the cache is full.
package cache
