// Package query exposes read-only go-command queriers over attendance records:
// per-user listings and the percentage aggregator.
package query
