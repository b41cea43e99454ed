// Package mtredis stores the session of an MTProto client in Redis.
//
// A [Storage] keeps eight scalar session attributes in one hash, update-state
// checkpoints in a second hash, and peer records plus username and phone
// pointers as flat keys, all under a caller-chosen prefix. Values use the
// fixed-width encodings of package codec.
//
// Storage methods are safe to call from multiple goroutines. Each call is a
// single Redis command (peer lookup by username or phone number is two);
// there is no multi-key transaction, retry or backoff.
//
// # Architecture boundaries
//
// mtredis owns key naming, the version gate and the mapping between client
// attributes and hash fields. Byte layouts live in codec. Connection setup
// and the Redis client lifecycle belong to the caller.
//
// # What this package must NOT do
//
//   - Interpret the auth key or any protocol payload.
//   - Close the Redis client it was given.
//   - Migrate data between schema versions.
package mtredis
