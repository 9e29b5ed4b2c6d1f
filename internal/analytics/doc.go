// Package analytics computes the metrics and grouped aggregates shown next to
// a filtered bond view.
//
// Every function takes the filtered records and is pure. Unknown values are
// left out of means, and an empty view yields a Summary with HasData false and
// a message instead of undefined averages. Face value totals are summed as
// decimals and rendered in rupees with go-money.
package analytics
