package internaldefs

import (
	"github.com/MrEthical07/mtredis"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   mtredis.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   mtredis.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for audit events dropped by a full dispatcher.
const AuditDroppedName = "mtredis_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."

var CounterDefs = []CounterDef{
	{ID: mtredis.MetricFieldRead, Name: "mtredis_field_read_total", Help: "Session field reads."},
	{ID: mtredis.MetricFieldWrite, Name: "mtredis_field_write_total", Help: "Session field writes."},
	{ID: mtredis.MetricFieldDelete, Name: "mtredis_field_delete_total", Help: "Session field deletions."},
	{ID: mtredis.MetricStateRead, Name: "mtredis_state_read_total", Help: "Update-state reads and listings."},
	{ID: mtredis.MetricStateWrite, Name: "mtredis_state_write_total", Help: "Update-state writes."},
	{ID: mtredis.MetricStateDelete, Name: "mtredis_state_delete_total", Help: "Update-state deletions."},
	{ID: mtredis.MetricPeersUpserted, Name: "mtredis_peers_upserted_total", Help: "Peer records written."},
	{ID: mtredis.MetricPointersWritten, Name: "mtredis_pointers_written_total", Help: "Username and phone pointers written."},
	{ID: mtredis.MetricPeerLookup, Name: "mtredis_peer_lookup_total", Help: "Peer lookups by id, username or phone number."},
	{ID: mtredis.MetricPeerNotFound, Name: "mtredis_peer_not_found_total", Help: "Peer lookups that found nothing."},
	{ID: mtredis.MetricDecodeFailure, Name: "mtredis_decode_failure_total", Help: "Stored values that failed to decode."},
	{ID: mtredis.MetricSessionOpened, Name: "mtredis_session_opened_total", Help: "Successful Open calls."},
	{ID: mtredis.MetricSessionClosed, Name: "mtredis_session_closed_total", Help: "Successful Close calls."},
	{ID: mtredis.MetricSessionDeleted, Name: "mtredis_session_deleted_total", Help: "Session deletions."},
	{ID: mtredis.MetricVersionRejected, Name: "mtredis_version_rejected_total", Help: "Open calls refused by the version gate."},
}

var HistogramDefs = []HistogramDef{
	{ID: mtredis.MetricRoundTripLatency, Name: "mtredis_roundtrip_latency_seconds", Help: "Redis round-trip latency."},
}

// HistogramBounds are the upper bounds of the eight core buckets in seconds.
var HistogramBounds = []string{
	"0.001",
	"0.002",
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"+Inf",
}

// HistogramBoundSuffix spells HistogramBounds for use in instrument names.
var HistogramBoundSuffix = []string{
	"0_001",
	"0_002",
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
