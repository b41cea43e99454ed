package mtredis

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/mtredis/codec"
	"github.com/redis/go-redis/v9"
)

// Session hash field names.
const (
	FieldDCID     = "dc_id"
	FieldTestMode = "test_mode"
	FieldAuthKey  = "auth_key"
	FieldDate     = "date"
	FieldUserID   = "user_id"
	FieldIsBot    = "is_bot"
	FieldVersion  = "version"
	FieldAPIID    = "api_id"
)

var sessionFields = []string{
	FieldDCID,
	FieldTestMode,
	FieldAuthKey,
	FieldDate,
	FieldUserID,
	FieldIsBot,
	FieldVersion,
	FieldAPIID,
}

type opKind uint8

const (
	opRead opKind = iota
	opWrite
	opDelete
)

// Op selects what [Field.Access] does: read the current value, write a new
// one, or delete the field.
type Op[T any] struct {
	kind  opKind
	value T
}

// Read returns an Op that fetches the stored value.
func Read[T any]() Op[T] {
	return Op[T]{kind: opRead}
}

// Write returns an Op that stores value.
func Write[T any](value T) Op[T] {
	return Op[T]{kind: opWrite, value: value}
}

// Delete returns an Op that removes the field.
func Delete[T any]() Op[T] {
	return Op[T]{kind: opDelete}
}

// WriteOptional returns Write(*value), or Delete when value is nil.
func WriteOptional[T any](value *T) Op[T] {
	if value == nil {
		return Delete[T]()
	}
	return Write(*value)
}

// IsRead reports whether o is a read.
func (o Op[T]) IsRead() bool {
	return o.kind == opRead
}

// Field is one scalar attribute of the session hash.
type Field[T any] struct {
	storage *Storage
	name    string
	codec   codec.Codec[T]
}

func newField[T any](s *Storage, name string, c codec.Codec[T]) Field[T] {
	return Field[T]{storage: s, name: name, codec: c}
}

// Name returns the hash field name.
func (f Field[T]) Name() string {
	return f.name
}

// Access performs op. For a read it returns the value and whether the field
// was set; writes and deletes return the zero value and false.
func (f Field[T]) Access(ctx context.Context, op Op[T]) (T, bool, error) {
	var zero T
	switch op.kind {
	case opRead:
		return f.Get(ctx)
	case opDelete:
		return zero, false, f.Clear(ctx)
	default:
		return zero, false, f.Set(ctx, op.value)
	}
}

// Get reads the field. ok is false when the field is not set.
func (f Field[T]) Get(ctx context.Context) (value T, ok bool, err error) {
	s := f.storage
	start := time.Now()
	data, err := s.redis.HGet(ctx, s.sessionKey, f.name).Bytes()
	s.observe(start)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.metrics.Inc(MetricFieldRead)
			return value, false, nil
		}
		return value, false, err
	}
	s.metrics.Inc(MetricFieldRead)

	value, err = f.codec.Unpack(data)
	if err != nil {
		s.metrics.Inc(MetricDecodeFailure)
		return value, false, err
	}
	return value, true, nil
}

// Set stores value. A nil []byte is stored as an empty value and reads back
// with ok=true; use Clear, Delete or WriteOptional(nil) to remove a field.
func (f Field[T]) Set(ctx context.Context, value T) error {
	s := f.storage
	start := time.Now()
	err := s.redis.HSet(ctx, s.sessionKey, f.name, f.codec.Pack(value)).Err()
	s.observe(start)
	if err != nil {
		return err
	}
	s.metrics.Inc(MetricFieldWrite)
	return nil
}

// Clear deletes the field. Clearing an unset field is not an error.
func (f Field[T]) Clear(ctx context.Context) error {
	s := f.storage
	start := time.Now()
	err := s.redis.HDel(ctx, s.sessionKey, f.name).Err()
	s.observe(start)
	if err != nil {
		return err
	}
	s.metrics.Inc(MetricFieldDelete)
	return nil
}

// DCID is the data center the session is bound to.
func (s *Storage) DCID() Field[int64] { return newField[int64](s, FieldDCID, codec.Int64{}) }

// TestMode reports whether the session targets the test servers.
func (s *Storage) TestMode() Field[bool] { return newField[bool](s, FieldTestMode, codec.Bool{}) }

// AuthKey is the opaque authorization key.
func (s *Storage) AuthKey() Field[[]byte] { return newField[[]byte](s, FieldAuthKey, codec.Bytes{}) }

// Date is the last liveness timestamp in Unix seconds.
func (s *Storage) Date() Field[int64] { return newField[int64](s, FieldDate, codec.Int64{}) }

func (s *Storage) UserID() Field[int64] { return newField[int64](s, FieldUserID, codec.Int64{}) }

func (s *Storage) IsBot() Field[bool] { return newField[bool](s, FieldIsBot, codec.Bool{}) }

// Version is the storage schema version checked by Open.
func (s *Storage) Version() Field[int64] { return newField[int64](s, FieldVersion, codec.Int64{}) }

func (s *Storage) APIID() Field[int64] { return newField[int64](s, FieldAPIID, codec.Int64{}) }
