// Package prometheus renders mtredis storage metrics in Prometheus text
// exposition format.
//
// Counters are named mtredis_*_total; the single histogram is
// mtredis_roundtrip_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate storage state.
package prometheus
