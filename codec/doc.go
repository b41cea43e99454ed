// Package codec provides the fixed-width binary encodings used by mtredis:
// scalar session values, peer records and update-state checkpoints.
//
// # Wire layouts
//
// All integers are little-endian two's complement.
//
//   - Int64: 8 bytes.
//   - Bool: one byte, 't' or 'f'.
//   - String: raw UTF-8, no length prefix.
//   - Bytes: stored verbatim.
//   - Peer record: int32 tag | int64 id | int64 access hash (20 bytes).
//   - Update state: state_id | pts | qts | date | seq (5 x int64, 40 bytes).
//
// # What this package must NOT do
//
//   - Perform I/O or import go-redis.
//   - Import mtredis (no upward imports).
package codec
